package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes used by the gate service.
const (
	DefaultSessionTTL   = time.Hour
	DefaultChallengeTTL = 5 * time.Minute
	DefaultResetTTL     = time.Hour
)

// Token uses. A token is only accepted by routes expecting its use.
const (
	UseSession   = "session"
	UseChallenge = "challenge"
	UseReset     = "reset"
)

// Authentication method references.
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
	AMRRecovery = "rcv"
	AMRRefresh  = "rfr"
)

// Claims carried by every token the service signs.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`

	// TwoFactor is set once a second factor has been verified for this
	// login. Protected routes can demand it.
	TwoFactor bool `json:"2fa,omitempty"`

	// Use is one of UseSession, UseChallenge or UseReset.
	Use string `json:"use"`

	AMR []string `json:"amr,omitempty"`
}

// ClaimsParams describes the identity a new token is minted for.
type ClaimsParams struct {
	Subject   string
	Email     string
	Role      string
	Use       string
	AMR       []string
	TwoFactor bool
	Issuer    string
	TTL       time.Duration
	Now       time.Time
}

// NewClaims builds claims with a fresh jti and iat/nbf/exp derived from Now.
func NewClaims(p ClaimsParams) Claims {
	now := p.Now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL)),
			ID:        NewJTI(),
		},
		Email:     p.Email,
		Role:      p.Role,
		TwoFactor: p.TwoFactor,
		Use:       p.Use,
		AMR:       slices.Clone(p.AMR),
	}
}

// NewJTI returns a random URL-safe identifier for the jti claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the iss claim. An empty expectation accepts anything.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateUse checks the use claim against the allowed values.
func (c *Claims) ValidateUse(allowed ...string) error {
	if !slices.Contains(allowed, c.Use) {
		return ErrWrongUse
	}
	return nil
}

// ValidateExpiryAt checks exp and nbf against now.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// Remaining is the validity left at now, or zero when already expired.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

func (c *Claims) HasAMR(method string) bool {
	return slices.Contains(c.AMR, method)
}
