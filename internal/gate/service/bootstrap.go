package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/cryptox"
	"github.com/growersgate/gate/pkg/idx"
	"github.com/growersgate/gate/pkg/slogx"
)

// BootstrapService creates the first admin. Admins cannot self-register, so
// this is the only way in on a fresh database.
type BootstrapService struct {
	Store     store.Store
	TOTP      *TOTP
	Validator *Validator
	Token     string // pre-configured bootstrap token; empty disables bootstrap

	Now func() time.Time
}

type BootstrapInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	n, err := s.Store.Users().CountUsersByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token string, in BootstrapInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" {
		return domain.User{}, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("check bootstrap: %w", err)
	}
	if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, ErrBootstrapAlready
	}

	reg := RegisterInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		UserType:  string(domain.RoleAdmin),
	}.Normalize()
	if _, err := s.Validator.ValidateRegistration(reg, true); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash admin password: %w", err)
	}
	enrollment, err := s.TOTP.GenerateSecret(reg.Email)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	admin := domain.User{
		ID:           idx.NewAt(now).String(),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		TOTPSecret:   enrollment.Secret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, fmt.Errorf("create admin: %w", err)
	}

	l.Info("system bootstrapped", "admin_id", admin.ID)
	return admin, nil
}
