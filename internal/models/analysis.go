package models

// RelationType classifies a relationship between two characters.
type RelationType string

// The five relationship types the model is instructed to use. Anything
// else coming back from the model is coerced to RelationAlly.
const (
	RelationFamily  RelationType = "family"
	RelationFriend  RelationType = "friend"
	RelationRival   RelationType = "rival"
	RelationRomance RelationType = "romance"
	RelationAlly    RelationType = "ally"
)

// Valid reports whether t is one of the recognized relationship types.
func (t RelationType) Valid() bool {
	switch t {
	case RelationFamily, RelationFriend, RelationRival, RelationRomance, RelationAlly:
		return true
	}
	return false
}

// Character is a normalized character entry. ID is unique within a single
// AnalysisResult and derived from the name when the model omits it.
type Character struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Role        string   `json:"role"`
	Traits      []string `json:"traits"`
}

// Relationship is a typed edge between two characters. Source and Target
// refer to Character IDs within the same AnalysisResult.
type Relationship struct {
	ID           string       `json:"id"`
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Type         RelationType `json:"type"`
	Description  string       `json:"description"`
	Significance int          `json:"significance"`
}

// BookAnalysis carries the thematic portion of the model's output.
type BookAnalysis struct {
	Themes    []string `json:"themes"`
	Setting   string   `json:"setting"`
	Timeframe string   `json:"timeframe"`
}

// AnalysisResult is the validated output of the normalization pipeline.
type AnalysisResult struct {
	Summary       string         `json:"summary"`
	Analysis      BookAnalysis   `json:"analysis"`
	Characters    []Character    `json:"characters"`
	Relationships []Relationship `json:"relationships"`
}

// CharacterByID returns the character with the given ID, if present.
func (r AnalysisResult) CharacterByID(id string) (Character, bool) {
	for _, c := range r.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}
