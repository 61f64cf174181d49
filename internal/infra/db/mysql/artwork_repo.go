package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

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

// Create inserts a new Artwork row; duplicate-key errors map to ErrConflict.
func (r *ArtworkRepository) Create(ctx context.Context, a *domain.Artwork) error {
	const q = `
INSERT INTO artworks
(id, museum_id, title, artist, description_json, image_url,
 embedding, is_verified, source, confidence_score, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?);`

	desc, err := marshalDescription(a.Description)
	if err != nil {
		return err
	}
	emb, err := encodeVector(a.Embedding)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID, nullString(a.MuseumID), a.Title, a.Artist, desc, a.ImageURL,
		emb, a.IsVerified, a.Source, nullFloat(a.Confidence), a.CreatedAt,
	)
	if err != nil {
		var myErr *gomysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == 1062 {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	return nil
}

// Get by ID
func (r *ArtworkRepository) Get(ctx context.Context, id domain.ArtworkID) (*domain.Artwork, error) {
	q := `SELECT ` + artworkColumns + ` FROM artworks WHERE id=? LIMIT 1;`
	a, err := scanArtwork(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return a, err
}

func (r *ArtworkRepository) Update(ctx context.Context, a *domain.Artwork) error {
	const q = `
UPDATE artworks
SET title = ?,
    artist = ?,
    description_json = ?,
    is_verified = ?,
    source = ?,
    confidence_score = ?
WHERE id = ?;`
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM artworks WHERE id=?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

// Nearest fetches the scoped pool and ranks it by cosine distance in Go,
// same as the postgres backend.
func (r *ArtworkRepository) Nearest(ctx context.Context, embedding domain.Vector, museumScope []string, k int) ([]domain.Candidate, error) {
	if k <= 0 {
		k = 5
	}
	query := `SELECT ` + artworkColumns + ` FROM artworks WHERE museum_id IS NULL`
	var args []any
	if len(museumScope) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(museumScope)), ",")
		query = `SELECT ` + artworkColumns + ` FROM artworks
WHERE museum_id IN (` + placeholders + `) OR museum_id IS NULL`
		for _, id := range museumScope {
			args = append(args, id)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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
		emb    string
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
	a.Embedding = decodeVector(emb)
	a.Confidence = floatPtr(conf)
	return &a, nil
}
