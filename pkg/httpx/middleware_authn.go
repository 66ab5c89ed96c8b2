package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/growersgate/gate/pkg/slogx"
)

// Authenticator turns a raw bearer token into claims. Implementations verify
// the signature and expiry, check the token use against uses and consult any
// revocation list.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string, uses ...string) (jwtx.Claims, error)
}

const (
	msgMissingAuth  = "Authorization header missing"
	msgInvalidToken = "Invalid token"
)

// AuthnMiddleware requires a bearer token accepted for one of uses. A missing
// header is a 401; any token problem is a 403 with a generic message so the
// reason is never disclosed.
func AuthnMiddleware(a Authenticator, uses ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			scheme, raw, found := strings.Cut(authz, " ")
			raw = strings.TrimSpace(raw)
			if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="growers-gate"`)
				WriteMessage(w, http.StatusUnauthorized, msgMissingAuth)
				return
			}

			claims, err := a.Authenticate(ctx, raw, uses...)
			if err != nil {
				log.Warn("bearer token rejected", "err", err)
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteMessage(w, http.StatusForbidden, msgInvalidToken)
				return
			}

			ctx = contextWithAuth(ctx, raw, claims)
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
