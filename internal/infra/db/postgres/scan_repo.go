package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/artscan/internal/domain/scans"
)

type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Append inserts a ledger row. The ledger is append-only: there is no
// update or delete path on user_scans.
func (r *ScanRepository) Append(ctx context.Context, e *domain.ScanEvent) error {
	const q = `
INSERT INTO user_scans (id, user_id, artwork_id, image_url, ts)
VALUES ($1,$2,$3,$4,$5);`
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var artwork sql.NullString
	if e.ArtworkID != nil {
		artwork = sql.NullString{String: *e.ArtworkID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q, e.ID, e.UserID, artwork, e.ImageURL, ts)
	return err
}

// Latest scan events, newest first
func (r *ScanRepository) Latest(ctx context.Context, limit int) ([]*domain.ScanEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, artwork_id, image_url, ts
FROM user_scans
ORDER BY ts DESC, id DESC
LIMIT $1;`
	return r.queryEvents(ctx, q, limit)
}

// LatestByUser scan events for one user, newest first
func (r *ScanRepository) LatestByUser(ctx context.Context, userID string, limit int) ([]*domain.ScanEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, artwork_id, image_url, ts
FROM user_scans
WHERE user_id=$1
ORDER BY ts DESC, id DESC
LIMIT $2;`
	return r.queryEvents(ctx, q, userID, limit)
}

// Summarize counts ledger activity since the cutoff
func (r *ScanRepository) Summarize(ctx context.Context, since time.Time) (domain.Summary, error) {
	const q = `
SELECT COUNT(*) AS total_scans,
       COUNT(artwork_id) AS matched,
       COUNT(DISTINCT user_id) AS unique_users
FROM user_scans
WHERE ts >= $1;`
	var s domain.Summary
	if err := r.db.QueryRowContext(ctx, q, since).Scan(&s.TotalScans, &s.Matched, &s.UniqueUsers); err != nil {
		return domain.Summary{}, err
	}
	return s, nil
}

func (r *ScanRepository) queryEvents(ctx context.Context, q string, args ...any) ([]*domain.ScanEvent, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ScanEvent
	for rows.Next() {
		var (
			e       domain.ScanEvent
			artwork sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &artwork, &e.ImageURL, &e.Timestamp); err != nil {
			return nil, err
		}
		e.ArtworkID = strPtr(artwork)
		out = append(out, &e)
	}
	return out, rows.Err()
}
