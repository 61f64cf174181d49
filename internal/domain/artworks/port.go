package artworks

import "context"

// Repository port (interface untuk persistence). The repository doubles as
// the similarity index: Nearest is a read-only nearest-neighbor query over
// the stored embeddings.
type Repository interface {
	Create(ctx context.Context, a *Artwork) error
	Get(ctx context.Context, id ArtworkID) (*Artwork, error)
	Update(ctx context.Context, a *Artwork) error
	Delete(ctx context.Context, id ArtworkID) error

	// Nearest returns up to k candidates ranked by cosine distance
	// ascending. An empty museum scope searches the unaffiliated pool;
	// a non-empty scope searches those museums plus unaffiliated rows.
	Nearest(ctx context.Context, embedding Vector, museumScope []string, k int) ([]Candidate, error)
}

// Locker port: short-lived mutual exclusion keyed by an embedding bucket,
// held only for the coordinator's check-then-insert sequence.
type Locker interface {
	Acquire(ctx context.Context, key int64) (release func(), err error)
}
