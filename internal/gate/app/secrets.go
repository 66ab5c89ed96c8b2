package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/growersgate/gate/pkg/cryptox"
	"github.com/growersgate/gate/pkg/jwtx"
)

// InitSecrets builds the HMAC secret set from the configuration.
//
// The current secret signs every new token. Previous secrets are accepted
// for verification only, so AUTH_JWT_SECRET can be rotated while tokens
// signed with the old value are still live. Entries are either "kid:secret"
// or a bare secret, which is registered as "previous-<n>".
//
// Without AUTH_JWT_SECRET a random secret is generated; tokens then stop
// verifying whenever the process restarts.
func InitSecrets(cfg Config, logger *slog.Logger) (*jwtx.SecretSet, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral jwt secret: %w", err)
		}
		secret = generated
		logger.Warn("AUTH_JWT_SECRET not set, using an ephemeral signing secret; tokens will not survive a restart")
	}

	secrets, err := jwtx.NewSecretSet(cfg.JWTKeyID, []byte(secret))
	if err != nil {
		return nil, fmt.Errorf("signing secret %q: %w", cfg.JWTKeyID, err)
	}

	for i, entry := range cfg.JWTPreviousSecrets {
		kid, prev, ok := strings.Cut(entry, ":")
		if !ok {
			kid, prev = fmt.Sprintf("previous-%d", i+1), entry
		}
		if kid == cfg.JWTKeyID {
			return nil, fmt.Errorf("previous secret reuses the signing kid %q", kid)
		}
		if err := secrets.Add(kid, []byte(prev)); err != nil {
			return nil, fmt.Errorf("previous secret %q: %w", kid, err)
		}
	}

	logger.Info("jwt secrets loaded", "kid", cfg.JWTKeyID, "verifying", secrets.Len())
	return secrets, nil
}
