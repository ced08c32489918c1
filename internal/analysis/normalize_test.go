package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/raphaelgruber/bookgraph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("no json at all", func(t *testing.T) {
		_, err := ExtractJSON("Sorry, I cannot comply.")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})

	t.Run("json wrapped in prose", func(t *testing.T) {
		span, err := ExtractJSON(`Here is the data: {"summary": "x"} Hope that helps!`)
		require.NoError(t, err)
		assert.Equal(t, `{"summary": "x"}`, string(span))
	})

	t.Run("bare json", func(t *testing.T) {
		span, err := ExtractJSON(`{"a":1}`)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(span))
	})
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"refusal with no json", "Sorry, I cannot comply."},
		{"empty string", ""},
		{"unparseable object", "some text { not json } more text"},
		{"reversed braces", "} backwards {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse), "want ErrMalformedResponse, got %v", err)
		})
	}
}

func TestNormalizeExtractsEmbeddedJSON(t *testing.T) {
	raw := `Here is the data: {"summary": "A tale.", "characters": [], "relationships": []} Hope that helps!`

	result, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "A tale.", result.Summary)
	assert.Empty(t, result.Characters)
	assert.Empty(t, result.Relationships)
}

func TestNormalizeCharacterDefaults(t *testing.T) {
	raw := `{
		"characters": [
			{"name": "Jane Eyre"},
			{"id": "rochester", "name": "Edward Rochester", "role": "Protagonist", "traits": ["brooding"]},
			{"description": "an unnamed figure"}
		]
	}`

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Characters, 3)

	jane := result.Characters[0]
	assert.Equal(t, "JaneEyre", jane.ID, "id falls back to whitespace-stripped name")
	assert.Equal(t, "Jane Eyre", jane.Name)
	assert.Equal(t, "Unknown", jane.Role)
	assert.Equal(t, []string{}, jane.Traits)

	rochester := result.Characters[1]
	assert.Equal(t, "rochester", rochester.ID, "provided id wins")
	assert.Equal(t, []string{"brooding"}, rochester.Traits)

	anon := result.Characters[2]
	assert.NotEmpty(t, anon.ID, "generated id is never empty")
	assert.Equal(t, UnknownCharacterName, anon.Name)
	assert.Equal(t, "an unnamed figure", anon.Description)
}

func TestNormalizeEndpointResolution(t *testing.T) {
	raw := `{
		"characters": [
			{"id": "elizabeth", "name": "Elizabeth Bennet"},
			{"id": "darcy", "name": "Mr. Darcy"}
		],
		"relationships": [
			{"source": "Elizabeth Bennet", "target": "Mr. Darcy", "type": "romance", "significance": 9},
			{"source": "elizabeth", "target": "darcy", "type": "rival", "significance": 3},
			{"source": "wickham", "target": "Elizabeth Bennet", "type": "rival", "significance": 4}
		]
	}`

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Relationships, 3)

	// Names resolve to ids
	assert.Equal(t, "elizabeth", result.Relationships[0].Source)
	assert.Equal(t, "darcy", result.Relationships[0].Target)

	// Ids pass through untouched
	assert.Equal(t, "elizabeth", result.Relationships[1].Source)
	assert.Equal(t, "darcy", result.Relationships[1].Target)

	// Unknown values are treated as already being ids, even when no such
	// character exists
	assert.Equal(t, "wickham", result.Relationships[2].Source)
	assert.Equal(t, "elizabeth", result.Relationships[2].Target)
}

func TestNormalizeTypeCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.RelationType
	}{
		{"family kept", `"family"`, models.RelationFamily},
		{"friend kept", `"friend"`, models.RelationFriend},
		{"rival kept", `"rival"`, models.RelationRival},
		{"romance kept", `"romance"`, models.RelationRomance},
		{"ally kept", `"ally"`, models.RelationAlly},
		{"unknown coerced", `"nemesis"`, models.RelationAlly},
		{"uppercase coerced", `"Family"`, models.RelationAlly},
		{"empty coerced", `""`, models.RelationAlly},
		{"number coerced", `7`, models.RelationAlly},
		{"absent coerced", ``, models.RelationAlly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := ""
			if tt.raw != "" {
				field = fmt.Sprintf(`, "type": %s`, tt.raw)
			}
			raw := fmt.Sprintf(`{"relationships": [{"source": "a", "target": "b"%s}]}`, field)

			result, err := Normalize(raw)
			require.NoError(t, err)
			require.Len(t, result.Relationships, 1)
			assert.Equal(t, tt.want, result.Relationships[0].Type)
		})
	}
}

func TestNormalizeSignificanceClamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"negative clamps to zero", `-5`, 0},
		{"zero stays", `0`, 0},
		{"in range stays", `7`, 7},
		{"above range clamps", `15`, 10},
		{"non-numeric defaults", `"abc"`, 0},
		{"absent defaults", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := ""
			if tt.raw != "" {
				field = fmt.Sprintf(`, "significance": %s`, tt.raw)
			}
			raw := fmt.Sprintf(`{"relationships": [{"source": "a", "target": "b"%s}]}`, field)

			result, err := Normalize(raw)
			require.NoError(t, err)
			require.Len(t, result.Relationships, 1)
			assert.Equal(t, tt.want, result.Relationships[0].Significance)
		})
	}
}

func TestNormalizeRelationshipID(t *testing.T) {
	t.Run("provided id kept", func(t *testing.T) {
		result, err := Normalize(`{"relationships": [{"id": "rel_x_y", "source": "x", "target": "y"}]}`)
		require.NoError(t, err)
		assert.Equal(t, "rel_x_y", result.Relationships[0].ID)
	})

	t.Run("missing id synthesized from endpoints", func(t *testing.T) {
		result, err := Normalize(`{"relationships": [{"source": "x", "target": "y"}]}`)
		require.NoError(t, err)
		// A random suffix keeps ids distinct across calls, so only the
		// prefix is stable.
		assert.Regexp(t, `^rel_x_y_`, result.Relationships[0].ID)
	})
}

func TestNormalizeTopLevelDefaults(t *testing.T) {
	result, err := Normalize(`{}`)
	require.NoError(t, err)

	assert.Equal(t, "", result.Summary)
	assert.Equal(t, []string{}, result.Analysis.Themes)
	assert.Equal(t, "", result.Analysis.Setting)
	assert.Equal(t, "", result.Analysis.Timeframe)
	assert.Empty(t, result.Characters)
	assert.Empty(t, result.Relationships)
}

func TestNormalizeLenientLeaves(t *testing.T) {
	// Wrong-typed leaves degrade to defaults instead of failing the
	// document.
	raw := `{
		"summary": 42,
		"analysis": {"themes": "not-an-array", "setting": ["x"], "timeframe": null},
		"characters": [{"id": 7, "name": "Pip", "traits": [1, "gentle", null]}],
		"relationships": "nope"
	}`

	result, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "", result.Summary)
	assert.Equal(t, []string{}, result.Analysis.Themes)
	assert.Equal(t, "", result.Analysis.Setting)

	require.Len(t, result.Characters, 1)
	assert.Equal(t, "Pip", result.Characters[0].ID, "non-string id falls back to name")
	assert.Equal(t, []string{"gentle"}, result.Characters[0].Traits)

	assert.Empty(t, result.Relationships)
}

func TestNormalizeNameCollisionLastWriteWins(t *testing.T) {
	raw := `{
		"characters": [
			{"id": "first", "name": "The Double"},
			{"id": "second", "name": "The Double"}
		],
		"relationships": [
			{"source": "The Double", "target": "second", "type": "rival"}
		]
	}`

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "second", result.Relationships[0].Source, "colliding names resolve to the last id")
}

func TestNormalizeFullDocument(t *testing.T) {
	raw := `Commentary before. {
		"summary": "Orphan grows up.",
		"analysis": {
			"themes": ["Ambition", "Class"],
			"setting": "Kent and London",
			"timeframe": "Early 19th century"
		},
		"characters": [
			{"id": "pip", "name": "Pip", "description": "An orphan.", "role": "Protagonist", "traits": ["earnest"]},
			{"name": "Estella Havisham", "role": "Supporting"}
		],
		"relationships": [
			{"source": "pip", "target": "Estella Havisham", "type": "romance", "description": "Unrequited.", "significance": 8}
		]
	} Commentary after.`

	result, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "Orphan grows up.", result.Summary)
	assert.Equal(t, []string{"Ambition", "Class"}, result.Analysis.Themes)
	require.Len(t, result.Characters, 2)
	assert.Equal(t, "EstellaHavisham", result.Characters[1].ID)

	require.Len(t, result.Relationships, 1)
	rel := result.Relationships[0]
	assert.Equal(t, "pip", rel.Source)
	assert.Equal(t, "EstellaHavisham", rel.Target)
	assert.Equal(t, models.RelationRomance, rel.Type)
	assert.Equal(t, 8, rel.Significance)

	// The normalized result serializes with the public wire field names.
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"significance":8`)
}
