package llm

import (
	"strings"
	"testing"

	"github.com/raphaelgruber/bookgraph/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildPromptEmbedsMetadataAndText(t *testing.T) {
	meta := models.BookMetadata{
		Title:    "Hamlet",
		Author:   "William Shakespeare",
		Subjects: []string{"Tragedies", "Revenge -- Drama"},
	}

	prompt := BuildPrompt("To be, or not to be", meta)

	assert.Contains(t, prompt, `"title":"Hamlet"`)
	assert.Contains(t, prompt, `"Revenge -- Drama"`)
	assert.Contains(t, prompt, "To be, or not to be")

	// The instruction block pins the output contract the normalizer
	// later enforces.
	assert.Contains(t, prompt, "5-15 characters total")
	assert.Contains(t, prompt, "1-3 relationships")
	assert.Contains(t, prompt, `"family", "friend", "romance", "rival", or "ally"`)
	assert.Contains(t, prompt, "significance values (0-10)")
	assert.Contains(t, prompt, "exist in the characters array")
}

func TestBuildPromptTruncatesLongText(t *testing.T) {
	text := strings.Repeat("a", MaxPromptTextLen+5000)
	prompt := BuildPrompt(text, models.BookMetadata{})

	assert.NotContains(t, prompt, strings.Repeat("a", MaxPromptTextLen+1))
	assert.Contains(t, prompt, strings.Repeat("a", MaxPromptTextLen))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short string untouched", "hello", 10, "hello"},
		{"exact length untouched", "hello", 5, "hello"},
		{"ascii cut", "hello", 3, "hel"},
		{"multibyte rune not split", "héllo", 2, "h"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}
