package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/internal/gate/store/drivers/sqlite"
	"github.com/growersgate/gate/pkg/idx"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newStore(t *testing.T) (*sqlite.Store, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s, err := sqlite.NewStore(":memory:", sqlite.WithClock(clk.Now))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s, clk
}

func newUser(email string, role domain.Role) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        email,
		PasswordHash: "$argon2id$placeholder",
		Role:         role,
		TOTPSecret:   "JBSWY3DPEHPK3PXP",
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "gate.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFileStore_ConcurrentDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	const writers = 16
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		dupes   atomic.Int32
		errs    = make(chan error, writers)
		start   = make(chan struct{})
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := s.Users().CreateUser(ctx, newUser("race@example.com", domain.RoleCustomer))
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, store.ErrAlreadyExists):
				dupes.Add(1)
			default:
				errs <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err, "writers must lose with ErrAlreadyExists, not a lock error")
	}
	require.EqualValues(t, 1, created.Load())
	require.EqualValues(t, writers-1, dupes.Load())
}

func TestFileStore_ForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	// Concurrent writes spread across several pooled connections.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RecoveryCodes().CreateRecoveryCode(ctx, idx.New().String(), "orphan")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.Error(t, err)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore(t)

	u := newUser("Jane@Example.com", domain.RoleFarmer)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	t.Run("lookup by email is case insensitive", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "JANE@example.COM")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "jane@example.com", got.Email)
		require.Equal(t, domain.RoleFarmer, got.Role)
		require.False(t, got.TwoFactorEnabled)
		require.Equal(t, clk.Now(), got.CreatedAt)
	})

	t.Run("duplicate email in any case", func(t *testing.T) {
		dup := newUser("jane@example.com", domain.RoleCustomer)
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleFarmer, got.Role)
	})

	t.Run("unknown role rejected by schema", func(t *testing.T) {
		err := s.Users().CreateUser(ctx, newUser("x@example.com", domain.Role("wizard")))
		require.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, "nope", "h"), store.ErrNotFound)
	})

	t.Run("updates bump updated_at", func(t *testing.T) {
		clk.Advance(time.Minute)
		require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash"))
		require.NoError(t, s.Users().SetTwoFactorEnabled(ctx, u.ID, true))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)
		require.True(t, got.TwoFactorEnabled)
		require.Equal(t, clk.Now(), got.UpdatedAt)
	})

	t.Run("count by role", func(t *testing.T) {
		n, err := s.Users().CountUsersByRole(ctx, domain.RoleFarmer)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		n, err = s.Users().CountUsersByRole(ctx, domain.RoleAdmin)
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func TestRecoveryCodes(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	u := newUser("rc@example.com", domain.RoleCustomer)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	repo := s.RecoveryCodes()
	require.NoError(t, repo.CreateRecoveryCode(ctx, u.ID, "a"))
	require.NoError(t, repo.CreateRecoveryCode(ctx, u.ID, "b"))

	n, err := repo.CountRecoveryCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	ok, err := repo.ConsumeRecoveryCode(ctx, u.ID, "a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ConsumeRecoveryCode(ctx, u.ID, "a")
	require.NoError(t, err)
	require.False(t, ok, "a code can be used once")

	require.NoError(t, repo.DeleteAllRecoveryCodes(ctx, u.ID))
	n, err = repo.CountRecoveryCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPasswordResets(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore(t)
	u := newUser("reset@example.com", domain.RoleCommunity)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	repo := s.PasswordResets()
	now := clk.Now()

	require.NoError(t, repo.CreatePasswordReset(ctx, domain.PasswordReset{
		JTI: "first", UserID: u.ID, ExpiresAt: now.Add(time.Hour),
	}))

	t.Run("consumed once", func(t *testing.T) {
		pr, err := repo.ConsumePasswordReset(ctx, "first", now)
		require.NoError(t, err)
		require.Equal(t, u.ID, pr.UserID)
		require.NotNil(t, pr.ConsumedAt)

		_, err = repo.ConsumePasswordReset(ctx, "first", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("superseded by a newer request", func(t *testing.T) {
		require.NoError(t, repo.CreatePasswordReset(ctx, domain.PasswordReset{
			JTI: "second", UserID: u.ID, ExpiresAt: now.Add(time.Hour),
		}))
		require.NoError(t, repo.SupersedePasswordResets(ctx, u.ID, now))

		_, err := repo.ConsumePasswordReset(ctx, "second", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired cannot be consumed and is swept", func(t *testing.T) {
		require.NoError(t, repo.CreatePasswordReset(ctx, domain.PasswordReset{
			JTI: "third", UserID: u.ID, ExpiresAt: now.Add(time.Minute),
		}))

		_, err := repo.ConsumePasswordReset(ctx, "third", now.Add(2*time.Minute))
		require.ErrorIs(t, err, store.ErrNotFound)

		n, err := repo.DeleteExpiredPasswordResets(ctx, now.Add(2*time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 3, n)
	})
}

func TestPasswordResetSingleWinner(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore(t)
	u := newUser("race@example.com", domain.RoleFarmer)
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.PasswordResets().CreatePasswordReset(ctx, domain.PasswordReset{
		JTI: "race", UserID: u.ID, ExpiresAt: clk.Now().Add(time.Hour),
	}))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.PasswordResets().ConsumePasswordReset(ctx, "race", clk.Now())
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestRevokedTokens(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore(t)
	repo := s.RevokedTokens()

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, repo.RevokeToken(ctx, "jti-1", "user-1", clk.Now().Add(time.Hour)))
	require.NoError(t, repo.RevokeToken(ctx, "jti-1", "user-1", clk.Now().Add(time.Hour)))

	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	n, err := repo.DeleteExpiredRevokedTokens(ctx, clk.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = repo.DeleteExpiredRevokedTokens(ctx, clk.Now().Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestFailureCounters(t *testing.T) {
	ctx := context.Background()
	s, clk := newStore(t)
	repo := s.FailureCounters()

	for want := 1; want <= 3; want++ {
		got, err := repo.Increment(ctx, "2fa:user-1", time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	clk.Advance(2 * time.Minute)
	got, err := repo.Increment(ctx, "2fa:user-1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, got, "expired window restarts")

	require.NoError(t, repo.Reset(ctx, "2fa:user-1"))
	got, err = repo.Increment(ctx, "2fa:user-1", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, got)

	n, err := repo.DeleteExpiredFailureCounters(ctx, clk.Now().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Users().CreateUser(ctx, newUser("tx@example.com", domain.RoleFarmer)))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetUserByEmail(ctx, "tx@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		u := newUser("tx2@example.com", domain.RoleFarmer)
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().CreateUser(ctx, u); err != nil {
				return err
			}
			return tx.RecoveryCodes().CreateRecoveryCode(ctx, u.ID, "code")
		})
		require.NoError(t, err)

		n, err := s.RecoveryCodes().CountRecoveryCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("no nested transactions", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Tx(ctx)
			return err
		})
		require.Error(t, err)
	})
}
