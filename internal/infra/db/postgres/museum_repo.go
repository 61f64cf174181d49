package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/artscan/internal/domain/museums"
)

type MuseumRepository struct {
	db *sql.DB
}

func NewMuseumRepository(db *sql.DB) *MuseumRepository {
	return &MuseumRepository{db: db}
}

// Save insert/update Museum record
func (r *MuseumRepository) Save(ctx context.Context, m *domain.Museum) error {
	const q = `
INSERT INTO museums (id, name, lat, lon, radius_m)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
 name = EXCLUDED.name,
 lat = EXCLUDED.lat,
 lon = EXCLUDED.lon,
 radius_m = EXCLUDED.radius_m;`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.Name, m.Lat, m.Lon, m.RadiusMeters)
	return err
}

func (r *MuseumRepository) Get(ctx context.Context, id string) (*domain.Museum, error) {
	const q = `SELECT id, name, lat, lon, radius_m FROM museums WHERE id=$1 LIMIT 1;`
	var m domain.Museum
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Name, &m.Lat, &m.Lon, &m.RadiusMeters)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MuseumRepository) List(ctx context.Context) ([]*domain.Museum, error) {
	const q = `SELECT id, name, lat, lon, radius_m FROM museums ORDER BY name;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Museum
	for rows.Next() {
		var m domain.Museum
		if err := rows.Scan(&m.ID, &m.Name, &m.Lat, &m.Lon, &m.RadiusMeters); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
