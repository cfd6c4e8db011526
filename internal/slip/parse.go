package slip

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractSlipJSON locates and parses the JSON object in a model reply.
// Code-fence markers are removed wherever they appear, then the span from
// the first "{" to the last "}" is parsed. Leading and trailing prose
// around the object is tolerated; prose after the object that itself
// contains a "}" widens the span and surfaces as a parse error.
//
// Fields are decoded into a map so that type surprises (e.g. a string
// where a number belongs) survive to normalization instead of failing the
// whole parse.
func extractSlipJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code fences anywhere in the text, not just at the edges
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	jsonStr := text[startIdx : endIdx+1]

	var fields map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %w", err)
	}

	return fields, nil
}
