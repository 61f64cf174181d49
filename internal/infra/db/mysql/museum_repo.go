package mysql

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
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 name=VALUES(name), lat=VALUES(lat), lon=VALUES(lon), radius_m=VALUES(radius_m);`
	_, err := r.db.ExecContext(ctx, q, m.ID, m.Name, m.Lat, m.Lon, m.RadiusMeters)
	return err
}

func (r *MuseumRepository) Get(ctx context.Context, id string) (*domain.Museum, error) {
	const q = `SELECT id, name, lat, lon, radius_m FROM museums WHERE id=? LIMIT 1;`
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
