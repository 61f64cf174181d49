package artworks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArtwork() *Artwork {
	conf := 0.9
	return &Artwork{
		ID:         "a-1",
		Title:      "Untitled No. 5",
		Artist:     "Unknown",
		Embedding:  make(Vector, 4),
		Source:     SourceAIGenerated,
		Confidence: &conf,
		CreatedAt:  time.Now(),
	}
}

func TestArtworkValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validArtwork().Validate(4))
	})

	t.Run("missing title", func(t *testing.T) {
		a := validArtwork()
		a.Title = ""
		assert.Error(t, a.Validate(4))
	})

	t.Run("unknown source", func(t *testing.T) {
		a := validArtwork()
		a.Source = "scraped"
		assert.Error(t, a.Validate(4))
	})

	t.Run("confidence out of range", func(t *testing.T) {
		a := validArtwork()
		bad := 1.5
		a.Confidence = &bad
		assert.Error(t, a.Validate(4))
	})

	t.Run("verified requires curated source", func(t *testing.T) {
		a := validArtwork()
		a.IsVerified = true
		assert.Error(t, a.Validate(4))

		a.Source = SourceAdmin
		assert.NoError(t, a.Validate(4))

		a.Source = SourceMuseumAPI
		assert.NoError(t, a.Validate(4))
	})

	t.Run("embedding dimension mismatch", func(t *testing.T) {
		a := validArtwork()
		assert.Error(t, a.Validate(512))
	})
}

func TestArtworkTier(t *testing.T) {
	a := validArtwork()
	assert.Equal(t, TierCommunity, a.Tier())

	a.IsVerified = true
	a.Source = SourceAdmin
	assert.Equal(t, TierVerified, a.Tier())
}
