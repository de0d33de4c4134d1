package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for receipt extraction when the
// host configures nothing else.
const DefaultModelName = "gemini-2.5-flash"

// GeminiParser is the VisionParser backed by the Gemini API.
type GeminiParser struct {
	model string
}

// NewGeminiParser creates a parser for the given model name; empty selects
// DefaultModelName.
func NewGeminiParser(model string) *GeminiParser {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiParser{model: model}
}

// ParseReceipt sends the receipt image to Gemini and returns the parsed
// JSON object. The model is instructed to return strict JSON; any Markdown
// fences it emits anyway are stripped.
func (p *GeminiParser) ParseReceipt(ctx context.Context, image []byte, mimeType string) (map[string]interface{}, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("ParseReceipt: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildReceiptPrompt()},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("ParseReceipt: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ParseReceipt: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("ParseReceipt: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	return parsed, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost object if junk remains around it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// Ensure GeminiParser implements VisionParser.
var _ VisionParser = (*GeminiParser)(nil)
