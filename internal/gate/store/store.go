package store

import (
	"context"
	"errors"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers expose sub-repositories
// rather than flat methods so a transaction-scoped Store cannot start another
// transaction by accident.
type Store interface {
	Users() Users
	RecoveryCodes() RecoveryCodes
	PasswordResets() PasswordResets
	SessionState

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// SessionState holds the short-lived security state: the jti deny-list and
// failure counters. It can live in the SQL store or in Redis.
type SessionState interface {
	RevokedTokens() RevokedTokens
	FailureCounters() FailureCounters
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. A taken email returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	SetTwoFactorEnabled(ctx context.Context, userID string, enabled bool) error

	CountUsersByRole(ctx context.Context, role domain.Role) (int, error)
}

type RecoveryCodes interface {
	CreateRecoveryCode(ctx context.Context, userID string, codeHash string) error

	// ConsumeRecoveryCode deletes the code and reports whether it existed.
	// Of two concurrent callers only one sees true.
	ConsumeRecoveryCode(ctx context.Context, userID string, codeHash string) (bool, error)

	DeleteAllRecoveryCodes(ctx context.Context, userID string) error

	CountRecoveryCodes(ctx context.Context, userID string) (int, error)
}

type PasswordResets interface {
	CreatePasswordReset(ctx context.Context, r domain.PasswordReset) error

	// ConsumePasswordReset marks the reset used. It returns ErrNotFound when
	// the jti is unknown, expired or already consumed.
	ConsumePasswordReset(ctx context.Context, jti string, now time.Time) (domain.PasswordReset, error)

	// SupersedePasswordResets consumes every outstanding reset for the user.
	SupersedePasswordResets(ctx context.Context, userID string, now time.Time) error

	DeleteExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error)
}

type RevokedTokens interface {
	// RevokeToken deny-lists jti until expiresAt. Revoking twice is not an error.
	RevokeToken(ctx context.Context, jti, userID string, expiresAt time.Time) error

	IsRevoked(ctx context.Context, jti string) (bool, error)

	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}

type FailureCounters interface {
	// Increment bumps the counter for key and returns the new value. A counter
	// whose window has passed starts again from one.
	Increment(ctx context.Context, key string, window time.Duration) (int, error)

	Reset(ctx context.Context, key string) error

	DeleteExpiredFailureCounters(ctx context.Context, now time.Time) (int64, error)
}
