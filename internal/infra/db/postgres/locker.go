package postgres

import (
	"context"
	"database/sql"
)

// AdvisoryLocker serializes check-then-insert sequences with postgres
// advisory locks. The lock is session-scoped, so the connection stays
// pinned until release; the coordinator holds it only across its
// double-check and insert, never across other external calls.
type AdvisoryLocker struct {
	db *sql.DB
}

func NewAdvisoryLocker(db *sql.DB) *AdvisoryLocker {
	return &AdvisoryLocker{db: db}
}

func (l *AdvisoryLocker) Acquire(ctx context.Context, key int64) (func(), error) {
	c, err := l.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := c.ExecContext(ctx, `SELECT pg_advisory_lock($1);`, key); err != nil {
		c.Close()
		return nil, err
	}
	release := func() {
		// Unlock must not inherit a cancelled request context, otherwise
		// the session would keep the lock until the pool reaps it.
		_, _ = c.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1);`, key)
		c.Close()
	}
	return release, nil
}
