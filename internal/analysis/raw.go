package analysis

import "encoding/json"

// The raw* types mirror the loosely-typed JSON the model returns. Every
// leaf is kept as raw bytes so a malformed field degrades to its default
// instead of failing the document. Nothing outside this package should
// ever see these types; Normalize is the single conversion boundary.

type rawResult struct {
	Summary       json.RawMessage `json:"summary"`
	Analysis      rawAnalysis     `json:"analysis"`
	Characters    json.RawMessage `json:"characters"`
	Relationships json.RawMessage `json:"relationships"`
}

type rawAnalysis struct {
	Themes    json.RawMessage `json:"themes"`
	Setting   json.RawMessage `json:"setting"`
	Timeframe json.RawMessage `json:"timeframe"`
}

type rawCharacter struct {
	ID          json.RawMessage `json:"id"`
	Name        json.RawMessage `json:"name"`
	Description json.RawMessage `json:"description"`
	Role        json.RawMessage `json:"role"`
	Traits      json.RawMessage `json:"traits"`
}

type rawRelationship struct {
	ID           json.RawMessage `json:"id"`
	Source       json.RawMessage `json:"source"`
	Target       json.RawMessage `json:"target"`
	Type         json.RawMessage `json:"type"`
	Description  json.RawMessage `json:"description"`
	Significance json.RawMessage `json:"significance"`
}

// asString decodes a JSON string leaf, returning def when the leaf is
// absent, not a string, or empty.
func asString(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return def
	}
	return s
}

// asStringSlice decodes a JSON array leaf, keeping only the string
// elements. Always returns a non-nil slice.
func asStringSlice(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var vals []any
	if err := json.Unmarshal(raw, &vals); err != nil {
		return out
	}
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asNumber decodes a JSON number leaf. Numeric strings do not count.
func asNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}
