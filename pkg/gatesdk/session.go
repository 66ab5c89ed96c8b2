package gatesdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds a session token and refreshes it shortly before it expires.
// It is safe for concurrent use.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewSession wraps an existing session token.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token, expiresAt: tokenExpiry(token)}
}

// tokenExpiry reads exp without verifying the signature. The server is the
// one that verifies; the client only needs to know when to refresh.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Token returns the current token without checking expiry.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt returns the expiry of the current token, zero if unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// getValidToken returns the token, refreshing it first when it is close to
// expiry.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, exp := s.token, s.expiresAt
	s.mu.RUnlock()

	if token == "" {
		return "", ErrNoToken
	}
	if exp.IsZero() || time.Until(exp) > s.client.RefreshBefore {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another goroutine may have refreshed already
	if s.token != token {
		return s.token, nil
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	return s.token, nil
}

// Refresh asks the server for a fresh token. The server returns the same one
// while it still has plenty of life left.
func (s *Session) Refresh(ctx context.Context) (*RefreshResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (*RefreshResponse, error) {
	if s.token == "" {
		return nil, ErrNoToken
	}
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/refresh-token", s.token, nil, nil)
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	s.token = out.Token
	s.expiresAt = out.ExpiresAt
	return &out, nil
}

// Logout revokes the token on the server. The session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return ErrNoToken
	}
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/logout", s.token, nil, nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}
	s.token = ""
	s.expiresAt = time.Time{}
	return nil
}

// do sends an authenticated JSON request and decodes the reply into out.
func (s *Session) do(ctx context.Context, method, path string, body, out any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	resp, err := s.client.doRequest(ctx, method, path, token, body, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	var out MessageResponse
	return s.do(ctx, http.MethodPost, "/change-password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, &out)
}

func (s *Session) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	var out DashboardResponse
	if err := s.do(ctx, http.MethodGet, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TwoFactorSetup returns the enrollment data and whether 2FA is on.
func (s *Session) TwoFactorSetup(ctx context.Context) (*TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	if err := s.do(ctx, http.MethodGet, "/2fa/setup", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TwoFactorQRCode returns the enrollment QR code as a PNG.
func (s *Session) TwoFactorQRCode(ctx context.Context) ([]byte, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/2fa/qr", token, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer drain(resp)
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp, body)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// EnableTwoFactor turns 2FA on and returns the recovery codes.
func (s *Session) EnableTwoFactor(ctx context.Context, code string) ([]string, error) {
	var out RecoveryCodesResponse
	if err := s.do(ctx, http.MethodPost, "/2fa/enable", TwoFactorCodeRequest{Token: code}, &out); err != nil {
		return nil, err
	}
	return out.RecoveryCodes, nil
}

func (s *Session) DisableTwoFactor(ctx context.Context, code string) error {
	var out MessageResponse
	return s.do(ctx, http.MethodPost, "/2fa/disable", TwoFactorCodeRequest{Token: code}, &out)
}

// RegenerateRecoveryCodes replaces every recovery code. The old ones stop
// working.
func (s *Session) RegenerateRecoveryCodes(ctx context.Context, code string) ([]string, error) {
	var out RecoveryCodesResponse
	if err := s.do(ctx, http.MethodPost, "/2fa/recovery-codes", TwoFactorCodeRequest{Token: code}, &out); err != nil {
		return nil, err
	}
	return out.RecoveryCodes, nil
}
