// Package analysis converts untrusted model output into the validated
// domain schema. The model returns free-form text with JSON embedded in
// prose, inconsistent identifier schemes (names and ids used
// interchangeably in relationship endpoints), missing fields, and values
// outside valid ranges; everything here exists to absorb that.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/raphaelgruber/bookgraph/internal/models"
)

// ErrMalformedResponse indicates the model output contained no parseable
// JSON object. Always fatal to the request, never retried.
var ErrMalformedResponse = errors.New("model response contained no parseable JSON")

// UnknownCharacterName is the placeholder for characters the model
// returned without a name.
const UnknownCharacterName = "Unknown Character"

// ExtractJSON locates the JSON object embedded in the raw model output.
// The model may wrap the object in commentary, so the span runs from the
// first '{' to the last '}'.
func ExtractJSON(raw string) ([]byte, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no object delimiters in output", ErrMalformedResponse)
	}
	return []byte(raw[start : end+1]), nil
}

// Normalize parses raw model output and assembles a well-formed
// AnalysisResult. Invalid or missing fields are silently defaulted and
// clamped rather than rejected; the model output is inherently unreliable
// and strict validation would fail most real responses.
func Normalize(raw string) (models.AnalysisResult, error) {
	span, err := ExtractJSON(raw)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	var doc rawResult
	if err := json.Unmarshal(span, &doc); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	characters := normalizeCharacters(doc.Characters)
	relationships := normalizeRelationships(doc.Relationships, nameIndex(characters))

	return models.AnalysisResult{
		Summary: asString(doc.Summary, ""),
		Analysis: models.BookAnalysis{
			Themes:    asStringSlice(doc.Analysis.Themes),
			Setting:   asString(doc.Analysis.Setting, ""),
			Timeframe: asString(doc.Analysis.Timeframe, ""),
		},
		Characters:    characters,
		Relationships: relationships,
	}, nil
}

// normalizeCharacters applies per-character defaults. The id falls back
// to the whitespace-stripped name, then to a generated one; it is never
// empty. Id collisions between characters are not deduplicated.
func normalizeCharacters(raw json.RawMessage) []models.Character {
	var entries []rawCharacter
	if len(raw) > 0 {
		// A non-array value degrades to no characters.
		_ = json.Unmarshal(raw, &entries)
	}

	characters := make([]models.Character, 0, len(entries))
	for _, rc := range entries {
		name := asString(rc.Name, "")
		id := asString(rc.ID, "")
		if id == "" {
			if name != "" {
				id = stripWhitespace(name)
			} else {
				id = "char_" + randomSuffix()
			}
		}
		if name == "" {
			name = UnknownCharacterName
		}
		characters = append(characters, models.Character{
			ID:          id,
			Name:        name,
			Description: asString(rc.Description, ""),
			Role:        asString(rc.Role, "Unknown"),
			Traits:      asStringSlice(rc.Traits),
		})
	}
	return characters
}

// nameIndex maps character names to resolved ids. Last write wins when
// names collide; duplicate-name detection is out of scope here.
func nameIndex(characters []models.Character) map[string]string {
	index := make(map[string]string, len(characters))
	for _, c := range characters {
		index[c.Name] = c.ID
	}
	return index
}

// normalizeRelationships resolves endpoints through the name index and
// coerces the remaining fields. Resolution is best effort: a raw value
// that is neither a known name nor a known id passes through unchanged,
// so a relationship can still reference a character that does not exist.
func normalizeRelationships(raw json.RawMessage, index map[string]string) []models.Relationship {
	var entries []rawRelationship
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &entries)
	}

	relationships := make([]models.Relationship, 0, len(entries))
	for _, rr := range entries {
		source := resolveEndpoint(asString(rr.Source, ""), index)
		target := resolveEndpoint(asString(rr.Target, ""), index)

		relType := models.RelationType(asString(rr.Type, ""))
		if !relType.Valid() {
			relType = models.RelationAlly
		}

		significance := 0
		if f, ok := asNumber(rr.Significance); ok {
			significance = clamp(int(f), 0, 10)
		}

		id := asString(rr.ID, "")
		if id == "" {
			id = fmt.Sprintf("rel_%s_%s_%s", source, target, randomSuffix())
		}

		relationships = append(relationships, models.Relationship{
			ID:           id,
			Source:       source,
			Target:       target,
			Type:         relType,
			Description:  asString(rr.Description, ""),
			Significance: significance,
		})
	}
	return relationships
}

// resolveEndpoint maps a display name onto its character id when the
// index knows it, otherwise treats the value as already being an id.
func resolveEndpoint(value string, index map[string]string) string {
	if id, ok := index[value]; ok {
		return id
	}
	return value
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// randomSuffix reduces collision risk for generated ids across calls.
func randomSuffix() string {
	return uuid.NewString()[:8]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
