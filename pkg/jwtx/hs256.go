package jwtx

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the shortest HMAC secret accepted.
const MinSecretBytes = 32

// SecretSet holds the HMAC secrets known to the service. One secret is
// current and used for signing; the rest only verify, so a secret can be
// rotated without logging everybody out.
type SecretSet struct {
	mu      sync.RWMutex
	current string
	secrets map[string][]byte
}

// NewSecretSet returns a set whose signing secret is registered under kid.
func NewSecretSet(kid string, secret []byte) (*SecretSet, error) {
	s := &SecretSet{secrets: make(map[string][]byte)}
	if err := s.Add(kid, secret); err != nil {
		return nil, err
	}
	s.current = kid
	return s, nil
}

// Add registers a verification-only secret.
func (s *SecretSet) Add(kid string, secret []byte) error {
	if kid == "" {
		return errors.New("jwtx: kid must not be empty")
	}
	if len(secret) < MinSecretBytes {
		return ErrWeakSecret
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[kid] = append([]byte(nil), secret...)
	return nil
}

// Current returns the kid and secret used for signing.
func (s *SecretSet) Current() (string, []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.secrets[s.current]
}

// Get returns the secret for kid.
func (s *SecretSet) Get(kid string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.secrets[kid]; ok {
		return b, nil
	}
	return nil, ErrUnknownKID
}

// Len reports how many secrets can verify tokens.
func (s *SecretSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}

// HS256Signer signs with the current secret of a SecretSet.
type HS256Signer struct {
	Secrets *SecretSet
}

func NewSignerHS256(secrets *SecretSet) *HS256Signer {
	return &HS256Signer{Secrets: secrets}
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

func (s *HS256Signer) KID() string {
	kid, _ := s.Secrets.Current()
	return kid
}

func (s *HS256Signer) Sign(c Claims) (string, error) {
	kid, secret := s.Secrets.Current()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	t.Header["kid"] = kid

	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// HS256Verifier validates HS256 tokens against every secret in the set.
type HS256Verifier struct {
	Secrets *SecretSet
	Issuer  string

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewVerifierHS256(secrets *SecretSet, issuer string) *HS256Verifier {
	return &HS256Verifier{Secrets: secrets, Issuer: issuer}
}

// Verify checks the signature, exp, nbf and iss of token. Errors are always
// one of the package sentinels.
func (v *HS256Verifier) Verify(token string) (Claims, error) {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrMalformed
		}
		return v.Secrets.Get(kid)
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, ErrMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, ErrUnknownKID), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMalformed
	default:
		return ErrInvalidSig
	}
}
