package sqlite

import (
	"context"
	"time"
)

type failureCountersRepo struct {
	db  dbtx
	now func() time.Time
}

// Increment is a single upsert: an expired row restarts at one with a fresh
// window, a live row counts up and keeps its window.
func (r *failureCountersRepo) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	now := r.now()
	var count int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO failure_counters (key, count, expires_at) VALUES (?, 1, ?)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE WHEN failure_counters.expires_at <= ? THEN 1 ELSE failure_counters.count + 1 END,
			expires_at = CASE WHEN failure_counters.expires_at <= ? THEN excluded.expires_at ELSE failure_counters.expires_at END
		RETURNING count`,
		key, unix(now.Add(window)), unix(now), unix(now),
	).Scan(&count)
	return count, err
}

func (r *failureCountersRepo) Reset(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM failure_counters WHERE key = ?`, key)
	return err
}

func (r *failureCountersRepo) DeleteExpiredFailureCounters(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM failure_counters WHERE expires_at <= ?`, unix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
