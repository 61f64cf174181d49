package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/artscan/internal/domain/issues"
)

type IssueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(ctx context.Context, rep *domain.IssueReport) error {
	const q = `
INSERT INTO issue_reports (id, artwork_id, user_id, kind, note, state, created_at)
VALUES (?,?,?,?,?,?,?);`
	created := rep.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, rep.ArtworkID, rep.UserID, rep.Kind, rep.Note, rep.State, created)
	return err
}

func (r *IssueRepository) Get(ctx context.Context, id string) (*domain.IssueReport, error) {
	const q = `
SELECT id, artwork_id, user_id, kind, note, state, created_at
FROM issue_reports WHERE id=? LIMIT 1;`
	var rep domain.IssueReport
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rep.ID, &rep.ArtworkID, &rep.UserID, &rep.Kind, &rep.Note, &rep.State, &rep.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *IssueRepository) UpdateState(ctx context.Context, id string, state domain.State) error {
	res, err := r.db.ExecContext(ctx, `UPDATE issue_reports SET state=? WHERE id=?;`, state, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *IssueRepository) ListOpen(ctx context.Context, limit int) ([]*domain.IssueReport, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, artwork_id, user_id, kind, note, state, created_at
FROM issue_reports
WHERE state = 'open'
ORDER BY created_at ASC, id ASC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.IssueReport
	for rows.Next() {
		var rep domain.IssueReport
		if err := rows.Scan(&rep.ID, &rep.ArtworkID, &rep.UserID, &rep.Kind, &rep.Note, &rep.State, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}
