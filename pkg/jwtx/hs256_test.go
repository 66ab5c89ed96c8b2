package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var (
	secretA = []byte("0123456789abcdef0123456789abcdef")
	secretB = []byte("fedcba9876543210fedcba9876543210")
)

func newSet(t *testing.T) *jwtx.SecretSet {
	t.Helper()
	set, err := jwtx.NewSecretSet("k1", secretA)
	require.NoError(t, err)
	return set
}

func sessionClaims(now time.Time, ttl time.Duration) jwtx.Claims {
	return jwtx.NewClaims(jwtx.ClaimsParams{
		Subject: "user-1",
		Email:   "jane@ok.com",
		Role:    "farmer",
		Use:     jwtx.UseSession,
		AMR:     []string{jwtx.AMRPassword},
		Issuer:  "growers-gate",
		TTL:     ttl,
		Now:     now,
	})
}

func TestSecretSet(t *testing.T) {
	_, err := jwtx.NewSecretSet("k1", []byte("too-short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)

	set := newSet(t)
	require.NoError(t, set.Add("k0", secretB))
	require.Equal(t, 2, set.Len())

	kid, secret := set.Current()
	require.Equal(t, "k1", kid)
	require.Equal(t, secretA, secret)

	_, err = set.Get("nope")
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestHS256_RoundTrip(t *testing.T) {
	set := newSet(t)
	signer := jwtx.NewSignerHS256(set)
	require.Equal(t, "HS256", signer.Alg())
	require.Equal(t, "k1", signer.KID())

	now := time.Now()
	claims := sessionClaims(now, time.Hour)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	v := jwtx.NewVerifierHS256(set, "growers-gate")

	t.Run("before expiry returns same claims", func(t *testing.T) {
		got, err := v.Verify(token)
		require.NoError(t, err)
		require.Equal(t, claims.Subject, got.Subject)
		require.Equal(t, claims.Email, got.Email)
		require.Equal(t, claims.Role, got.Role)
		require.Equal(t, claims.Use, got.Use)
		require.Equal(t, claims.ID, got.ID)
		require.Equal(t, claims.AMR, got.AMR)
		require.Equal(t, claims.ExpiresAt.Unix(), got.ExpiresAt.Unix())
	})

	t.Run("after expiry fails with ErrExpired", func(t *testing.T) {
		late := &jwtx.HS256Verifier{
			Secrets: set,
			Issuer:  "growers-gate",
			Now:     func() time.Time { return now.Add(time.Hour + time.Second) },
		}
		_, err := late.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := jwtx.NewVerifierHS256(set, "other").Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestHS256_Failures(t *testing.T) {
	set := newSet(t)
	token, err := jwtx.NewSignerHS256(set).Sign(sessionClaims(time.Now(), time.Hour))
	require.NoError(t, err)

	v := jwtx.NewVerifierHS256(set, "")

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b", "not.a.jwt"} {
			_, err := v.Verify(raw)
			require.ErrorIs(t, err, jwtx.ErrMalformed, raw)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		forged := jwtx.NewClaims(jwtx.ClaimsParams{Subject: "user-1", Role: "admin", Use: jwtx.UseSession, TTL: time.Hour, Now: time.Now()})
		other, err := jwtx.NewSecretSet("k1", secretB)
		require.NoError(t, err)
		forgedToken, err := jwtx.NewSignerHS256(other).Sign(forged)
		require.NoError(t, err)

		spliced := parts[0] + "." + strings.Split(forgedToken, ".")[1] + "." + parts[2]
		_, err = v.Verify(spliced)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("signed with unknown secret", func(t *testing.T) {
		other, err := jwtx.NewSecretSet("k1", secretB)
		require.NoError(t, err)
		foreign, err := jwtx.NewSignerHS256(other).Sign(sessionClaims(time.Now(), time.Hour))
		require.NoError(t, err)

		_, err = v.Verify(foreign)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("unknown kid", func(t *testing.T) {
		other, err := jwtx.NewSecretSet("k9", secretA)
		require.NoError(t, err)
		foreign, err := jwtx.NewSignerHS256(other).Sign(sessionClaims(time.Now(), time.Hour))
		require.NoError(t, err)

		_, err = v.Verify(foreign)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("missing kid", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims(time.Now(), time.Hour)).
			SignedString(secretA)
		require.NoError(t, err)

		_, err = v.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims(time.Now(), time.Hour)).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(unsigned)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("missing exp", func(t *testing.T) {
		c := sessionClaims(time.Now(), time.Hour)
		c.ExpiresAt = nil
		raw, err := jwtx.NewSignerHS256(set).Sign(c)
		require.NoError(t, err)

		_, err = v.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestHS256_SecretRotation(t *testing.T) {
	old, err := jwtx.NewSecretSet("k0", secretB)
	require.NoError(t, err)
	legacy, err := jwtx.NewSignerHS256(old).Sign(sessionClaims(time.Now(), time.Hour))
	require.NoError(t, err)

	set := newSet(t)
	v := jwtx.NewVerifierHS256(set, "")

	_, err = v.Verify(legacy)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	require.NoError(t, set.Add("k0", secretB))
	_, err = v.Verify(legacy)
	require.NoError(t, err)
}
