package gatesdk

import "time"

// ============================================================================
// Registration & Login
// ============================================================================

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	// UserType is one of farmer, customer or community.
	UserType string `json:"userType"`
}

// TwoFactorEnrollment is what an authenticator app needs to add the account.
type TwoFactorEnrollment struct {
	// QRCodeURL is the otpauth:// URI. Render it as a QR code or fetch
	// GET /2fa/qr for a ready made PNG.
	QRCodeURL string `json:"qrCodeUrl"`
	Secret    string `json:"secret"`
}

// RegisterResponse is returned with 201 Created.
type RegisterResponse struct {
	Message        string              `json:"message"`
	UserID         string              `json:"userId"`
	Token          string              `json:"token"`
	UserType       string              `json:"userType"`
	TwoFactorSetup TwoFactorEnrollment `json:"twoFactorSetup"`
}

// LoginRequest is the body of POST /login. TwoFactorToken may carry the
// current TOTP code to finish a 2FA login in one round trip.
type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	TwoFactorToken string `json:"twoFactorToken,omitempty"`
}

// LoginResponse carries a session token.
type LoginResponse struct {
	Token          string `json:"token"`
	Message        string `json:"message"`
	UserType       string `json:"userType"`
	DashboardRoute string `json:"dashboardRoute"`
}

// ChallengeResponse is returned with 202 Accepted when the account has 2FA
// enabled and no code was sent. Token is a short lived challenge token.
type ChallengeResponse struct {
	Message           string `json:"message"`
	TwoFactorRequired bool   `json:"twoFactorRequired"`
	Token             string `json:"token"`
}

// TwoFactorCodeRequest carries a TOTP code. It is the body of /verify-2fa and
// the /2fa management routes.
type TwoFactorCodeRequest struct {
	Token string `json:"token"`
}

// RecoveryRequest is the body of POST /verify-2fa/recovery.
type RecoveryRequest struct {
	Email        string `json:"email"`
	RecoveryCode string `json:"recoveryCode"`
}

type RecoveryResponse struct {
	LoginResponse
	RemainingRecoveryCodes int `json:"remainingRecoveryCodes"`
}

// RefreshResponse is returned by POST /refresh-token. Refreshed is false when
// the presented token still had enough life left and was handed back as is.
type RefreshResponse struct {
	Token     string    `json:"token"`
	Refreshed bool      `json:"refreshed"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ============================================================================
// Passwords
// ============================================================================

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse carries the reset token. There is no mail delivery;
// the caller forwards the token to the user. ResetToken is empty when the
// server hides unknown addresses.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ============================================================================
// Two-factor management
// ============================================================================

type TwoFactorSetupResponse struct {
	TwoFactorEnrollment
	Enabled bool `json:"enabled"`
}

// RecoveryCodesResponse lists freshly generated recovery codes. They are
// only ever shown once.
type RecoveryCodesResponse struct {
	Message       string   `json:"message"`
	RecoveryCodes []string `json:"recoveryCodes"`
}

// ============================================================================
// Dashboard
// ============================================================================

type DashboardResponse struct {
	Message string   `json:"message"`
	Role    string   `json:"role"`
	UserID  string   `json:"userId"`
	Email   string   `json:"email"`
	Widgets []string `json:"widgets"`
}

// ============================================================================
// Bootstrap
// ============================================================================

// BootstrapRequest creates the first admin account.
type BootstrapRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type BootstrapResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// ============================================================================
// Common
// ============================================================================

// MessageResponse is the body of simple acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ErrorResponse is the body of every error reply. Errors is only set for
// validation failures.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency checked by /readyz.
type HealthChecks struct {
	Database     string `json:"database"`
	SessionState string `json:"sessionState"`
	Signer       string `json:"signer"`
}
