package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/internal/gate/store/drivers/redis"
	"github.com/growersgate/gate/internal/gate/store/drivers/sqlite"
)

func newSQLite(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newRedisState(t *testing.T) (*redis.State, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.New(rdb), mr
}

func TestWithSessionState_NilKeepsStore(t *testing.T) {
	st := newSQLite(t)
	require.Same(t, st, store.WithSessionState(st, nil))
	require.NoError(t, store.PingSessionState(context.Background(), st))
}

func TestWithSessionState_RoutesToOverride(t *testing.T) {
	ctx := context.Background()
	sql := newSQLite(t)
	state, mr := newRedisState(t)
	st := store.WithSessionState(sql, state)

	require.NoError(t, st.RevokedTokens().RevokeToken(ctx, "jti-1", "user-1", time.Now().Add(time.Minute)))

	// the SQL deny-list is untouched
	revoked, err := sql.RevokedTokens().IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	revoked, err = state.RevokedTokens().IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// transactions see the same override
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.FailureCounters().Increment(ctx, "2fa:user:user-1", time.Minute)
		require.Equal(t, 1, n)
		return err
	}))

	tx, err := st.Tx(ctx)
	require.NoError(t, err)
	n, err := tx.FailureCounters().Increment(ctx, "2fa:user:user-1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, tx.Rollback())

	// a rollback does not undo session state writes
	n, err = st.FailureCounters().Increment(ctx, "2fa:user:user-1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, store.PingSessionState(ctx, st))
	mr.SetError("LOADING redis is loading the dataset in memory")
	require.Error(t, store.PingSessionState(ctx, st))
}
