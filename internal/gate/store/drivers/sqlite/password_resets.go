package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
)

type passwordResetsRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = r.now()
	}
	var consumed sql.NullInt64
	if pr.ConsumedAt != nil {
		consumed = sql.NullInt64{Int64: unix(*pr.ConsumedAt), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_resets (jti, user_id, expires_at, consumed_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		pr.JTI, pr.UserID, unix(pr.ExpiresAt), consumed, unix(pr.CreatedAt))
	return mapConstraint(err)
}

// ConsumePasswordReset is a conditional update so that only one caller can
// flip consumed_at for a given jti.
func (r *passwordResetsRepo) ConsumePasswordReset(ctx context.Context, jti string, now time.Time) (domain.PasswordReset, error) {
	var (
		pr                   domain.PasswordReset
		expiresAt, createdAt int64
		consumedAt           sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		UPDATE password_resets
		SET consumed_at = ?
		WHERE jti = ? AND consumed_at IS NULL AND expires_at > ?
		RETURNING jti, user_id, expires_at, consumed_at, created_at`,
		unix(now), jti, unix(now),
	).Scan(&pr.JTI, &pr.UserID, &expiresAt, &consumedAt, &createdAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	pr.ExpiresAt = fromUnix(expiresAt)
	pr.ConsumedAt = mapNullUnixPtr(consumedAt)
	pr.CreatedAt = fromUnix(createdAt)
	return pr, nil
}

func (r *passwordResetsRepo) SupersedePasswordResets(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE password_resets SET consumed_at = ? WHERE user_id = ? AND consumed_at IS NULL`,
		unix(now), userID)
	return err
}

// DeleteExpiredPasswordResets removes records past expiry; consumed ones are
// kept until then so a replayed token still finds its consumed row.
func (r *passwordResetsRepo) DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at <= ?`, unix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
