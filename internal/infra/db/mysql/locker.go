package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

const lockTimeoutSeconds = 30

// NamedLocker serializes check-then-insert sequences with MySQL GET_LOCK.
// Named locks are session-scoped, so the connection stays pinned until
// release.
type NamedLocker struct {
	db *sql.DB
}

func NewNamedLocker(db *sql.DB) *NamedLocker {
	return &NamedLocker{db: db}
}

func (l *NamedLocker) Acquire(ctx context.Context, key int64) (func(), error) {
	name := fmt.Sprintf("artscan_catalog_%d", key)
	c, err := l.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var got sql.NullInt64
	if err := c.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?);`, name, lockTimeoutSeconds).Scan(&got); err != nil {
		c.Close()
		return nil, err
	}
	if !got.Valid || got.Int64 != 1 {
		c.Close()
		return nil, fmt.Errorf("timed out acquiring catalog lock %s", name)
	}
	release := func() {
		_, _ = c.ExecContext(context.Background(), `SELECT RELEASE_LOCK(?);`, name)
		c.Close()
	}
	return release, nil
}
