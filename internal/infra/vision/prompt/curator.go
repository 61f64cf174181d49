package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/artscan/internal/domain/vision"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a friendly art historian. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Estimate the style, era, and medium. Do not make up a specific title or artist if you do not know them; leave the artist empty instead.
- If the image is not an artwork, set is_artwork to false and explain why in description.
- confidence is your estimate in [0,1] of how reliable the identification is.

Schema (example with empty values):
{
  "label": "<string, short working title>",
  "artist": "<string, empty if unknown>",
  "description": "<string, a few sentences for a museum visitor>",
  "style": "<string>",
  "era": "<string>",
  "medium": "<string>",
  "is_artwork": true,
  "confidence": 0.0
}`
}

// GetUserPrompt builds the user message accompanying the image.
func GetUserPrompt() string {
	return "Analyze this artwork and respond with the JSON per schema. Act as a friendly art historian."
}

// ParseAnalysis decodes and sanity-checks the model's JSON reply.
func ParseAnalysis(raw string) (vision.Analysis, error) {
	var a vision.Analysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &a); err != nil {
		return vision.Analysis{}, fmt.Errorf("malformed analysis JSON: %w", err)
	}
	if a.IsArtwork && strings.TrimSpace(a.Label) == "" {
		return vision.Analysis{}, fmt.Errorf("analysis missing label")
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return vision.Analysis{}, fmt.Errorf("analysis confidence %v out of range [0,1]", a.Confidence)
	}
	return a, nil
}
