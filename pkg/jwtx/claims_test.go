package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 500, time.UTC)
	c := jwtx.NewClaims(jwtx.ClaimsParams{
		Subject: "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		Email:   "jane@ok.com",
		Role:    "farmer",
		Use:     jwtx.UseSession,
		AMR:     []string{jwtx.AMRPassword},
		Issuer:  "growers-gate",
		TTL:     time.Hour,
		Now:     now,
	})

	require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", c.Subject)
	require.Equal(t, now.Truncate(time.Second), c.IssuedAt.Time)
	require.Equal(t, now.Truncate(time.Second).Add(time.Hour), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
	require.True(t, c.HasAMR(jwtx.AMRPassword))
	require.False(t, c.HasAMR(jwtx.AMROTP))

	other := jwtx.NewClaims(jwtx.ClaimsParams{Now: now, TTL: time.Hour})
	require.NotEqual(t, c.ID, other.ID, "jti must be unique per token")
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "growers-gate"}}

	require.NoError(t, c.ValidateIssuer("growers-gate"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
}

func TestValidateUse(t *testing.T) {
	c := &jwtx.Claims{Use: jwtx.UseChallenge}

	require.NoError(t, c.ValidateUse(jwtx.UseSession, jwtx.UseChallenge))
	require.ErrorIs(t, c.ValidateUse(jwtx.UseSession), jwtx.ErrWrongUse)
}

func TestValidateExpiryAt(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		require.NoError(t, c.ValidateExpiryAt(now))
	})

	t.Run("expired token", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiryAt(now), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiryAt(now), jwtx.ErrNotYetValid)
	})
}

func TestRemaining(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(90 * time.Second)),
	}}

	require.Equal(t, 90*time.Second, c.Remaining(now))
	require.Zero(t, c.Remaining(now.Add(time.Hour)))
	require.Zero(t, (&jwtx.Claims{}).Remaining(now))
}
