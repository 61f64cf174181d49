package artworks

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ID tipe untuk Artwork
type ArtworkID string

// Source enum
type Source string

const (
	SourceMuseumAPI   Source = "museum_api"
	SourceAIGenerated Source = "ai_generated"
	SourceAdmin       Source = "admin"
	SourceCommunity   Source = "community"
)

// Tier is the trust classification shown to the user.
type Tier string

const (
	TierVerified  Tier = "verified"
	TierCommunity Tier = "community"
)

// Aggregate Root: Artwork
type Artwork struct {
	ID          ArtworkID      `json:"id" validate:"required"`
	MuseumID    *string        `json:"museum_id,omitempty"`
	Title       string         `json:"title" validate:"required"`
	Artist      string         `json:"artist"`
	Description map[string]any `json:"description,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Embedding   Vector         `json:"-"`
	IsVerified  bool           `json:"is_verified"`
	Source      Source         `json:"source" validate:"required,oneof=museum_api ai_generated admin community"`
	Confidence  *float64       `json:"confidence_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	CreatedAt   time.Time      `json:"created_at"`
}

var validate = validator.New()

// Validate enforces the row invariants before any insert or update.
// dim is the embedding dimension the gateway produces; every stored row
// must carry a vector of exactly that length.
func (a *Artwork) Validate(dim int) error {
	if err := validate.Struct(a); err != nil {
		return err
	}
	if a.IsVerified && a.Source != SourceMuseumAPI && a.Source != SourceAdmin {
		return fmt.Errorf("verified artwork must have source museum_api or admin, got %s", a.Source)
	}
	if len(a.Embedding) != dim {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(a.Embedding), dim)
	}
	return nil
}

// Tier derives the trust tier from the verification flag.
func (a *Artwork) Tier() Tier {
	if a.IsVerified {
		return TierVerified
	}
	return TierCommunity
}
