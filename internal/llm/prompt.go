package llm

import (
	"encoding/json"
	"fmt"

	"github.com/raphaelgruber/bookgraph/internal/models"
)

// MaxPromptTextLen caps how much of the book text is embedded in the
// prompt. Keeps the request inside the model's context window; the exact
// value is a cost/quality tradeoff, not a correctness one.
const MaxPromptTextLen = 25000

const promptTemplate = `Analyze the following book and respond with a JSON object structured EXACTLY as follows. Do not include any explanatory text outside the JSON structure:

{
  "summary": "A concise 2-5 paragraph summary of the book's plot, main events, and resolution",
  "analysis": {
    "themes": ["Theme 1", "Theme 2", "Theme 3"],
    "setting": "Brief description of the primary setting",
    "timeframe": "Historical period or timeframe of the story"
  },
  "characters": [
    {
      "id": "unique_id_based_on_name",
      "name": "Character Full Name",
      "description": "A brief 1-2 sentence description of the character",
      "role": "Protagonist/Antagonist/Supporting",
      "traits": ["trait1", "trait2", "trait3"]
    }
  ],
  "relationships": [
    {
      "id": "rel_source_target",
      "source": "character1_id",
      "target": "character2_id",
      "type": "family|friend|romance|rival|ally",
      "description": "Brief description of their relationship dynamic",
      "significance": 8
    }
  ]
}

Important requirements:
1. Consider the book's metadata (author, publication date, subjects) when analyzing themes and context
2. Provide a comprehensive but concise summary that captures the main plot arc
3. Include ONLY the main and important supporting characters (5-15 characters total)
4. For each character, create at least 1-3 relationships with other characters
5. Ensure all character IDs used in relationships exist in the characters array
6. Use ONLY the relationship types specified: "family", "friend", "romance", "rival", or "ally"
7. Assign significance values (0-10) based on how important the relationship is to the plot
8. Ensure the JSON is valid and properly formatted

Book metadata: %s
Book text: %s...`

// BuildPrompt assembles the analysis instruction, embedding the metadata
// as JSON and a bounded prefix of the book text. The output-shape
// requirements are advisory only; the normalizer enforces them for real.
func BuildPrompt(text string, meta models.BookMetadata) string {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		// BookMetadata is plain strings and slices; this cannot fail.
		metaJSON = []byte("{}")
	}
	return fmt.Sprintf(promptTemplate, metaJSON, Truncate(text, MaxPromptTextLen))
}

// Truncate returns at most max bytes of s, backing up so a multi-byte
// rune is never split.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
