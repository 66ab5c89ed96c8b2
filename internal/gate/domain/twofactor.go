package domain

import "time"

// RecoveryCodeCount is how many recovery codes a user holds after enabling 2FA
// or regenerating.
const RecoveryCodeCount = 10

// Enrollment is what a user needs to add the account to an authenticator app.
type Enrollment struct {
	Secret string // base32
	URI    string // otpauth://totp/...
}

// RecoveryCode is a stored single-use fallback for the TOTP code.
type RecoveryCode struct {
	UserID    string
	CodeHash  string // base64url SHA-256 fingerprint
	CreatedAt time.Time
}
