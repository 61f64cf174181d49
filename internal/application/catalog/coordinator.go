package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/artscan/internal/application"
	"github.com/bryanwahyu/artscan/internal/domain/artworks"
)

// Coordinator owns new-artwork creation. It guarantees at most one row is
// created for a not-yet-seen subject even when scans of the same unseen
// artwork race: lock the embedding's locality bucket, re-run the match query,
// and only then insert. Nothing else in the system inserts artworks at
// scan time.
type Coordinator struct {
	Repo      artworks.Repository
	Locker    artworks.Locker
	Clock     application.Clock
	Threshold float64
	TopK      int
	Dimension int
	Log       zerolog.Logger
}

// Proposal is the creation request handed over by the fallback dispatcher.
type Proposal struct {
	Embedding   artworks.Vector
	Title       string
	Artist      string
	Description map[string]any
	Confidence  float64
	ImageURL    string
	MuseumScope []string
}

// GetOrCreate returns the canonical artwork for the proposal's embedding,
// creating it when no row is within the match threshold. The boolean is true
// when this call created the row.
func (c *Coordinator) GetOrCreate(ctx context.Context, p Proposal) (*artworks.Artwork, bool, error) {
	release, err := c.Locker.Acquire(ctx, p.Embedding.LockKey())
	if err != nil {
		return nil, false, fmt.Errorf("acquiring catalog lock: %w", err)
	}
	defer release()

	// Double-check under the lock: a concurrent scan may have finished
	// cataloging while we were analyzing.
	if winner, err := c.query(ctx, p); err != nil {
		return nil, false, err
	} else if winner != nil {
		requeryWinsTotal.Inc()
		return winner, false, nil
	}

	conf := p.Confidence
	art := &artworks.Artwork{
		ID:          artworks.ArtworkID(uuid.New().String()),
		MuseumID:    museumFor(p.MuseumScope),
		Title:       p.Title,
		Artist:      p.Artist,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Embedding:   p.Embedding,
		IsVerified:  false,
		Source:      artworks.SourceAIGenerated,
		Confidence:  &conf,
		CreatedAt:   c.Clock.Now(),
	}
	if err := art.Validate(c.Dimension); err != nil {
		return nil, false, fmt.Errorf("validating proposed artwork: %w", err)
	}

	if err := c.Repo.Create(ctx, art); err != nil {
		if errors.Is(err, artworks.ErrConflict) {
			// Lost the race at the store level; the winner is committed,
			// so the re-query must find it.
			conflictsTotal.Inc()
			winner, qerr := c.query(ctx, p)
			if qerr != nil {
				return nil, false, qerr
			}
			if winner != nil {
				return winner, false, nil
			}
			return nil, false, err
		}
		return nil, false, err
	}

	createdTotal.Inc()
	c.Log.Info().
		Str("artwork_id", string(art.ID)).
		Str("title", art.Title).
		Float64("confidence", conf).
		Msg("auto-cataloged new artwork")
	return art, true, nil
}

func (c *Coordinator) query(ctx context.Context, p Proposal) (*artworks.Artwork, error) {
	cands, err := c.Repo.Nearest(ctx, p.Embedding, p.MuseumScope, c.TopK)
	if err != nil {
		return nil, fmt.Errorf("re-querying index: %w", err)
	}
	if best := artworks.Best(cands, c.Threshold); best != nil {
		return best.Artwork, nil
	}
	return nil, nil
}

// museumFor attributes the new row to a museum only when the geofence scope
// is unambiguous; otherwise it stays an unaffiliated community piece.
func museumFor(scope []string) *string {
	if len(scope) == 1 {
		id := scope[0]
		return &id
	}
	return nil
}
