package scans

import (
	"context"
	"time"
)

// Repository port for the append-only ledger. Nothing updates or deletes
// scan events; moderation works on artworks, not on the ledger.
type Repository interface {
	Append(ctx context.Context, e *ScanEvent) error
	Latest(ctx context.Context, limit int) ([]*ScanEvent, error)
	LatestByUser(ctx context.Context, userID string, limit int) ([]*ScanEvent, error)
	Summarize(ctx context.Context, since time.Time) (Summary, error)
}

// ImageStore port (interface untuk penyimpanan gambar)
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
