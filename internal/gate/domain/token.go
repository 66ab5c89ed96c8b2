package domain

import "time"

// PasswordReset tracks an issued reset token so it can be consumed once.
type PasswordReset struct {
	JTI        string
	UserID     string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// RevokedToken is a deny-listed jti. It is kept until the token would have
// expired anyway.
type RevokedToken struct {
	JTI       string
	UserID    string
	ExpiresAt time.Time
}
