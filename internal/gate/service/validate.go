package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/growersgate/gate/internal/gate/domain"
)

const (
	MinPasswordLength = 12
	MaxPasswordLength = 128
)

const (
	msgPasswordLength  = "Password must be between 12 and 128 characters long"
	msgPasswordClasses = "Password must include at least one lowercase letter, one uppercase letter, one number, and one special character"
	msgPasswordName    = "Password must not contain your name"
)

var namePattern = regexp.MustCompile(`^[\p{L} -]+$`)

// Validator holds the configurable input rules.
type Validator struct {
	// BlockedEmailDomains are rejected at registration, compared case-insensitively.
	BlockedEmailDomains []string
}

// RegisterInput is what a new user submits.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	UserType  string
}

// Normalize trims names and lower-cases the email.
func (in RegisterInput) Normalize() RegisterInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.UserType = strings.TrimSpace(in.UserType)
	return in
}

// ValidateRegistration checks every field and returns the parsed role.
// allowAdmin is only set by the bootstrap path.
func (v *Validator) ValidateRegistration(in RegisterInput, allowAdmin bool) (domain.Role, error) {
	var verr ValidationError

	v.checkName(&verr, "firstName", "First name", in.FirstName)
	v.checkName(&verr, "lastName", "Last name", in.LastName)
	v.checkEmail(&verr, in.Email)
	v.checkPassword(&verr, "password", in.Password, in.FirstName, in.LastName)

	role, err := domain.ParseRole(in.UserType)
	if err != nil || (!allowAdmin && !role.SelfRegistrable()) {
		verr.Add("userType", "Invalid user type")
	}

	return role, verr.Err()
}

// ValidatePassword applies the password policy on its own, for change and
// reset flows.
func (v *Validator) ValidatePassword(field, password, firstName, lastName string) error {
	var verr ValidationError
	v.checkPassword(&verr, field, password, firstName, lastName)
	return verr.Err()
}

func (v *Validator) checkName(verr *ValidationError, field, label, name string) {
	switch {
	case name == "":
		verr.Add(field, label+" is required")
	case !namePattern.MatchString(name):
		verr.Add(field, label+" can only contain letters, spaces, and hyphens")
	}
}

func (v *Validator) checkEmail(verr *ValidationError, email string) {
	if !validEmail(email) {
		verr.Add("email", "Valid email is required")
		return
	}
	_, domainPart, _ := strings.Cut(email, "@")
	for _, blocked := range v.BlockedEmailDomains {
		if strings.EqualFold(domainPart, strings.TrimSpace(blocked)) {
			verr.Add("email", "Email domain not allowed")
			return
		}
	}
}

// validEmail accepts a bare addr-spec with a dotted domain. Display names and
// angle brackets are refused.
func validEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return false
	}
	dot := strings.LastIndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}

func (v *Validator) checkPassword(verr *ValidationError, field, password, firstName, lastName string) {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		verr.Add(field, msgPasswordLength)
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		verr.Add(field, msgPasswordClasses)
	}

	pw := strings.ToLower(password)
	for _, name := range []string{firstName, lastName} {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" && strings.Contains(pw, name) {
			verr.Add(field, msgPasswordName)
			return
		}
	}
}
