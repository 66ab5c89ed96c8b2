package domain

import "time"

type User struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string // lower-cased
	PasswordHash     string // argon2id PHC string, or legacy bcrypt
	Role             Role
	TOTPSecret       string // base32, generated at registration
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
