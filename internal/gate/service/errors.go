package service

import (
	"errors"
	"strings"
)

var (
	ErrConflict              = errors.New("user already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidTwoFactor      = errors.New("invalid 2FA token")
	ErrInvalidRecoveryCode   = errors.New("invalid recovery code")
	ErrTooManyAttempts       = errors.New("too many failed 2FA attempts")
	ErrTooManyLoginAttempts  = errors.New("too many failed login attempts")
	ErrAccessDenied          = errors.New("access denied")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidToken          = errors.New("invalid token")
	ErrRevoked               = errors.New("token revoked")
	ErrInvalidResetToken     = errors.New("invalid or expired reset token")
	ErrWrongCurrentPassword  = errors.New("current password is incorrect")
	ErrTwoFactorNotEnabled   = errors.New("2FA is not enabled")
	ErrTwoFactorEnabled      = errors.New("2FA is already enabled")
	ErrBootstrapDisabled     = errors.New("bootstrap is disabled")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
)

// FieldError is one failed input rule.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError collects every failed rule of a request so the client can
// show them all at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Msg
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Msg: msg})
}

// Err returns e when any rule failed and nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
