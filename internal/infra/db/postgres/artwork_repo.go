package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"

	domain "github.com/bryanwahyu/artscan/internal/domain/artworks"
)

type ArtworkRepository struct {
	db *sql.DB
}

func NewArtworkRepository(db *sql.DB) *ArtworkRepository {
	return &ArtworkRepository{db: db}
}

const artworkColumns = `id, museum_id, title, artist, description_json, image_url,
       embedding, is_verified, source, confidence_score, created_at`

// Create inserts a new Artwork row. A unique violation maps to ErrConflict
// so the coordinator can recover by re-query.
func (r *ArtworkRepository) Create(ctx context.Context, a *domain.Artwork) error {
	const q = `
INSERT INTO artworks
(id, museum_id, title, artist, description_json, image_url,
 embedding, is_verified, source, confidence_score, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`

	desc, err := marshalDescription(a.Description)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID, nullString(a.MuseumID), a.Title, a.Artist, desc, a.ImageURL,
		pq.Float64Array(a.Embedding), a.IsVerified, a.Source, nullFloat(a.Confidence), a.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	return nil
}

// Get by ID
func (r *ArtworkRepository) Get(ctx context.Context, id domain.ArtworkID) (*domain.Artwork, error) {
	q := `SELECT ` + artworkColumns + ` FROM artworks WHERE id=$1 LIMIT 1;`
	a, err := scanArtwork(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return a, err
}

// Update mutates the moderation-editable columns only; the embedding and
// the ledger never change through this path.
func (r *ArtworkRepository) Update(ctx context.Context, a *domain.Artwork) error {
	const q = `
UPDATE artworks
SET title = $1,
    artist = $2,
    description_json = $3,
    is_verified = $4,
    source = $5,
    confidence_score = $6
WHERE id = $7;`
	desc, err := marshalDescription(a.Description)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q,
		a.Title, a.Artist, desc, a.IsVerified, a.Source, nullFloat(a.Confidence), a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, a.ID)
	}
	return nil
}

func (r *ArtworkRepository) Delete(ctx context.Context, id domain.ArtworkID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM artworks WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

// Nearest fetches the scoped pool and ranks it by cosine distance. Distance
// is computed here rather than in SQL so the store stays a plain row store;
// catalog sizes per scope are small enough for that.
func (r *ArtworkRepository) Nearest(ctx context.Context, embedding domain.Vector, museumScope []string, k int) ([]domain.Candidate, error) {
	if k <= 0 {
		k = 5
	}
	var (
		rows *sql.Rows
		err  error
	)
	if len(museumScope) == 0 {
		q := `SELECT ` + artworkColumns + ` FROM artworks WHERE museum_id IS NULL;`
		rows, err = r.db.QueryContext(ctx, q)
	} else {
		q := `SELECT ` + artworkColumns + ` FROM artworks
WHERE museum_id = ANY($1) OR museum_id IS NULL;`
		rows, err = r.db.QueryContext(ctx, q, pq.Array(museumScope))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		if len(a.Embedding) == 0 {
			continue
		}
		out = append(out, domain.Candidate{Artwork: a, Distance: embedding.Cosine(a.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtwork(row rowScanner) (*domain.Artwork, error) {
	var (
		a      domain.Artwork
		museum sql.NullString
		desc   string
		emb    pq.Float64Array
		conf   sql.NullFloat64
	)
	if err := row.Scan(
		&a.ID, &museum, &a.Title, &a.Artist, &desc, &a.ImageURL,
		&emb, &a.IsVerified, &a.Source, &conf, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.MuseumID = strPtr(museum)
	a.Description = unmarshalDescription(desc)
	a.Embedding = domain.Vector(emb)
	a.Confidence = floatPtr(conf)
	return &a, nil
}
