package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/growersgate/gate/internal/gate/store"
)

type txStore struct {
	tx  *sql.Tx
	now func() time.Time
}

func newTx(tx *sql.Tx, now func() time.Time) *txStore {
	return &txStore{tx: tx, now: now}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

// Ping is a no-op; the connection is held by the transaction.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                   { return &usersRepo{db: t.tx, now: t.now} }
func (t *txStore) RecoveryCodes() store.RecoveryCodes   { return &recoveryCodesRepo{db: t.tx, now: t.now} }
func (t *txStore) PasswordResets() store.PasswordResets { return &passwordResetsRepo{db: t.tx, now: t.now} }
func (t *txStore) RevokedTokens() store.RevokedTokens   { return &revokedTokensRepo{db: t.tx} }
func (t *txStore) FailureCounters() store.FailureCounters {
	return &failureCountersRepo{db: t.tx, now: t.now}
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
