package vision

import (
	"context"

	"github.com/bryanwahyu/artscan/internal/domain/artworks"
)

// Embedder turns raw image bytes into a fixed-dimension vector. The model
// itself is external; this is the capability boundary so tests can plug in
// deterministic fakes.
type Embedder interface {
	Embed(ctx context.Context, image []byte) (artworks.Vector, error)
}

// Analysis is the generative description produced when no match exists.
type Analysis struct {
	Label       string  `json:"label"`
	Artist      string  `json:"artist,omitempty"`
	Description string  `json:"description"`
	Style       string  `json:"style,omitempty"`
	Era         string  `json:"era,omitempty"`
	Medium      string  `json:"medium,omitempty"`
	IsArtwork   bool    `json:"is_artwork"`
	Confidence  float64 `json:"confidence"`
}

// Analyzer is the generative vision-language service.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (Analysis, error)
}
