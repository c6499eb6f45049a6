package gemini

import (
	"encoding/json"
	"strings"

	"github.com/isaacchacko/den"
	"google.golang.org/genai"
)

// jsonConfig returns a config asking for a JSON response matching schema.
func jsonConfig(system string, temperature float32, schema *genai.Schema) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
}

// decodeJSON unmarshals a model response into v. Markdown code fences
// around the payload are tolerated. Malformed output is ECOLLABORATOR.
func decodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err != nil {
		return den.Errorf(den.ECOLLABORATOR, "malformed model response: %v", err)
	}
	return nil
}
