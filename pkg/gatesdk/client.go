package gatesdk

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the public routes of the gate service and creates
// Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// RefreshBefore is how close to expiry a Session refreshes its token
	// before a request. It should not exceed the server's refresh threshold,
	// otherwise the server hands back the same token.
	RefreshBefore time.Duration
}

func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		RefreshBefore: 90 * time.Second,
	}
}

// Register creates an account and returns a session for it together with the
// 2FA enrollment data.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, *RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/register", "", req, nil)
	if err != nil {
		return nil, nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, nil, err
	}
	return c.NewSession(out.Token), &out, nil
}

// Login authenticates with email and password. When the account has 2FA
// enabled and code is empty, a *ChallengeRequiredError is returned.
func (c *SDKClient) Login(ctx context.Context, email, password, code string) (*Session, *LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", "", LoginRequest{
		Email:          email,
		Password:       password,
		TwoFactorToken: code,
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode == http.StatusAccepted {
		var ch ChallengeResponse
		if err := decodeJSON(resp, &ch, http.StatusAccepted); err != nil {
			return nil, nil, err
		}
		return nil, nil, &ChallengeRequiredError{Token: ch.Token, Message: ch.Message}
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, nil, err
	}
	return c.NewSession(out.Token), &out, nil
}

// CompleteTwoFactor answers a challenge with a TOTP code.
func (c *SDKClient) CompleteTwoFactor(ctx context.Context, challenge *ChallengeRequiredError, code string) (*Session, *LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/verify-2fa", challenge.Token, TwoFactorCodeRequest{Token: code}, nil)
	if err != nil {
		return nil, nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, nil, err
	}
	return c.NewSession(out.Token), &out, nil
}

// CompleteWithRecoveryCode answers a challenge with a single use recovery code.
func (c *SDKClient) CompleteWithRecoveryCode(ctx context.Context, challenge *ChallengeRequiredError, email, code string) (*Session, *RecoveryResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/verify-2fa/recovery", challenge.Token, RecoveryRequest{
		Email:        email,
		RecoveryCode: code,
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	var out RecoveryResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, nil, err
	}
	return c.NewSession(out.Token), &out, nil
}

// ForgotPassword requests a reset token for email.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/forgot-password", "", ForgotPasswordRequest{Email: email}, nil)
	if err != nil {
		return nil, err
	}

	var out ForgotPasswordResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password with a token from ForgotPassword.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/reset-password", "", ResetPasswordRequest{
		Token:       token,
		NewPassword: newPassword,
	}, nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// Bootstrap creates the first admin account. bootstrapToken must match the
// BOOTSTRAP_TOKEN the server was started with.
func (c *SDKClient) Bootstrap(ctx context.Context, bootstrapToken string, req BootstrapRequest) (*BootstrapResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/bootstrap", "", req, map[string]string{
		"X-Bootstrap-Token": bootstrapToken,
	})
	if err != nil {
		return nil, err
	}

	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// drain discards what is left of a body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
