package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/growersgate/gate/pkg/slogx"
)

// DefaultRefreshThreshold is how close to expiry a session must be before
// /refresh-token mints a new one.
const DefaultRefreshThreshold = 2 * time.Minute

// Issued is a signed token together with its claims.
type Issued struct {
	Token  string
	Claims jwtx.Claims
}

// RefreshResult reports whether Refresh minted a new token.
type RefreshResult struct {
	Token     string
	Refreshed bool
	ExpiresAt time.Time
}

type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Store    store.Store
	Issuer   string

	SessionTTL       time.Duration
	ChallengeTTL     time.Duration
	ResetTTL         time.Duration
	RefreshThreshold time.Duration

	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) ttlFor(use string) time.Duration {
	pick := func(d, def time.Duration) time.Duration {
		if d > 0 {
			return d
		}
		return def
	}
	switch use {
	case jwtx.UseChallenge:
		return pick(s.ChallengeTTL, jwtx.DefaultChallengeTTL)
	case jwtx.UseReset:
		return pick(s.ResetTTL, jwtx.DefaultResetTTL)
	default:
		return pick(s.SessionTTL, jwtx.DefaultSessionTTL)
	}
}

// Issue signs a token for u. A zero ttl uses the configured lifetime for
// use. The 2fa claim is set when amr names a second factor.
func (s *TokenService) Issue(u domain.User, use string, amr []string, ttl time.Duration) (Issued, error) {
	if ttl <= 0 {
		ttl = s.ttlFor(use)
	}
	c := jwtx.NewClaims(jwtx.ClaimsParams{
		Subject: u.ID,
		Email:   u.Email,
		Role:    u.Role.String(),
		Use:     use,
		AMR:     amr,
		Issuer:  s.Issuer,
		TTL:     ttl,
		Now:     s.now(),
	})
	c.TwoFactor = c.HasAMR(jwtx.AMROTP) || c.HasAMR(jwtx.AMRRecovery)

	token, err := s.Signer.Sign(c)
	if err != nil {
		return Issued{}, fmt.Errorf("sign %s token: %w", use, err)
	}
	return Issued{Token: token, Claims: c}, nil
}

// Verify checks the signature and expiry of raw, that its use is one of uses
// and that it has not been revoked. Every failure wraps ErrInvalidToken.
func (s *TokenService) Verify(ctx context.Context, raw string, uses ...string) (jwtx.Claims, error) {
	c, err := s.Verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err := c.ValidateUse(uses...); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.ID == "" {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, jwtx.ErrMalformed)
	}

	revoked, err := s.Store.RevokedTokens().IsRevoked(ctx, c.ID)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		slogx.FromContext(ctx).Warn("revoked token presented", "user_id", c.Subject, "use", c.Use)
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrRevoked)
	}
	return c, nil
}

// Authenticate lets TokenService back httpx.AuthnMiddleware.
func (s *TokenService) Authenticate(ctx context.Context, raw string, uses ...string) (jwtx.Claims, error) {
	return s.Verify(ctx, raw, uses...)
}

// Revoke deny-lists the token until it would have expired.
func (s *TokenService) Revoke(ctx context.Context, c jwtx.Claims) error {
	if c.ID == "" || c.ExpiresAt == nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, jwtx.ErrMalformed)
	}
	if err := s.Store.RevokedTokens().RevokeToken(ctx, c.ID, c.Subject, c.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Refresh hands back raw unchanged while it has more than the threshold
// left. Otherwise it mints a session with the same identity and factors and
// revokes the old one.
func (s *TokenService) Refresh(ctx context.Context, raw string, c jwtx.Claims) (RefreshResult, error) {
	if c.Use != jwtx.UseSession {
		return RefreshResult{}, fmt.Errorf("%w: %w", ErrInvalidToken, jwtx.ErrWrongUse)
	}
	now := s.now()
	if err := c.ValidateExpiryAt(now); err != nil {
		return RefreshResult{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	threshold := s.RefreshThreshold
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	if c.Remaining(now) > threshold {
		return RefreshResult{Token: raw, Refreshed: false, ExpiresAt: c.ExpiresAt.Time}, nil
	}

	amr := c.AMR
	if !c.HasAMR(jwtx.AMRRefresh) {
		amr = append(append([]string(nil), c.AMR...), jwtx.AMRRefresh)
	}
	u := domain.User{ID: c.Subject, Email: c.Email, Role: domain.Role(c.Role)}
	issued, err := s.Issue(u, jwtx.UseSession, amr, 0)
	if err != nil {
		return RefreshResult{}, err
	}
	if err := s.Revoke(ctx, c); err != nil && !errors.Is(err, ErrInvalidToken) {
		return RefreshResult{}, err
	}
	return RefreshResult{Token: issued.Token, Refreshed: true, ExpiresAt: issued.Claims.ExpiresAt.Time}, nil
}
