package app

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/growersgate/gate/pkg/jwtx"
)

func TestInitSecrets(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	secret := strings.Repeat("k", jwtx.MinSecretBytes)

	t.Run("configured secret signs", func(t *testing.T) {
		set, err := InitSecrets(Config{JWTKeyID: "kid-1", JWTSecret: secret}, logger)
		require.NoError(t, err)

		kid, b := set.Current()
		require.Equal(t, "kid-1", kid)
		require.Equal(t, secret, string(b))
		require.Equal(t, 1, set.Len())
	})

	t.Run("ephemeral when unset", func(t *testing.T) {
		a, err := InitSecrets(Config{JWTKeyID: "kid-1"}, logger)
		require.NoError(t, err)
		b, err := InitSecrets(Config{JWTKeyID: "kid-1"}, logger)
		require.NoError(t, err)

		_, sa := a.Current()
		_, sb := b.Current()
		require.GreaterOrEqual(t, len(sa), jwtx.MinSecretBytes)
		require.NotEqual(t, sa, sb)
	})

	t.Run("previous secrets verify", func(t *testing.T) {
		old := strings.Repeat("o", jwtx.MinSecretBytes)
		bare := strings.Repeat("b", jwtx.MinSecretBytes)
		set, err := InitSecrets(Config{
			JWTKeyID:           "kid-2",
			JWTSecret:          secret,
			JWTPreviousSecrets: []string{"kid-1:" + old, bare},
		}, logger)
		require.NoError(t, err)
		require.Equal(t, 3, set.Len())

		got, err := set.Get("kid-1")
		require.NoError(t, err)
		require.Equal(t, old, string(got))

		got, err = set.Get("previous-2")
		require.NoError(t, err)
		require.Equal(t, bare, string(got))

		kid, _ := set.Current()
		require.Equal(t, "kid-2", kid)
	})

	t.Run("rejects weak and clashing secrets", func(t *testing.T) {
		_, err := InitSecrets(Config{JWTKeyID: "kid-1", JWTSecret: "short"}, logger)
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)

		_, err = InitSecrets(Config{
			JWTKeyID:           "kid-1",
			JWTSecret:          secret,
			JWTPreviousSecrets: []string{"kid-1:" + secret},
		}, logger)
		require.Error(t, err)
	})
}
