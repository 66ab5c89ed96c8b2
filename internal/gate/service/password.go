package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/cryptox"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/growersgate/gate/pkg/slogx"
)

// PasswordService handles forgotten and changed passwords.
type PasswordService struct {
	Store     store.Store
	Tokens    *TokenService
	Validator *Validator

	Now func() time.Time
}

type ResetRequest struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

func (s *PasswordService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RequestReset issues a reset token for the account behind email. Any older
// outstanding reset for the same user stops working.
func (s *PasswordService) RequestReset(ctx context.Context, email string) (ResetRequest, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset for unknown account")
			return ResetRequest{}, ErrUserNotFound
		}
		return ResetRequest{}, fmt.Errorf("get user: %w", err)
	}

	issued, err := s.Tokens.Issue(u, jwtx.UseReset, nil, 0)
	if err != nil {
		return ResetRequest{}, err
	}
	expiresAt := issued.Claims.ExpiresAt.Time

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().SupersedePasswordResets(ctx, u.ID, s.now()); err != nil {
			return fmt.Errorf("supersede resets: %w", err)
		}
		return tx.PasswordResets().CreatePasswordReset(ctx, domain.PasswordReset{
			JTI:       issued.Claims.ID,
			UserID:    u.ID,
			ExpiresAt: expiresAt,
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return ResetRequest{}, fmt.Errorf("record reset: %w", err)
	}

	log.Info("password reset issued", "user_id", u.ID)
	return ResetRequest{UserID: u.ID, Token: issued.Token, ExpiresAt: expiresAt}, nil
}

// CompleteReset sets a new password using a reset token. A token works once.
func (s *PasswordService) CompleteReset(ctx context.Context, raw, newPassword string) error {
	log := slogx.FromContext(ctx)

	c, err := s.Tokens.Verify(ctx, raw, jwtx.UseReset)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			log.Warn("password reset rejected", "err", err)
			return fmt.Errorf("%w: %w", ErrInvalidResetToken, err)
		}
		return err
	}

	u, err := s.Store.Users().GetUserByID(ctx, c.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.Validator.ValidatePassword("newPassword", newPassword, u.FirstName, u.LastName); err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.PasswordResets().ConsumePasswordReset(ctx, c.ID, s.now()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return fmt.Errorf("consume reset: %w", err)
		}
		return tx.Users().UpdatePasswordHash(ctx, u.ID, hash)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			log.Warn("password reset rejected", "user_id", u.ID, "reason", "already_used")
		}
		return err
	}

	log.Info("password reset completed", "user_id", u.ID)
	return nil
}

// ChangePassword replaces the password of a signed in user.
func (s *PasswordService) ChangePassword(ctx context.Context, userID, current, next string) error {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := cryptox.VerifyPassword(current, u.PasswordHash); err != nil {
		log.Warn("password change rejected", "user_id", u.ID, "reason", "bad_current_password")
		return ErrWrongCurrentPassword
	}

	if err := s.Validator.ValidatePassword("newPassword", next, u.FirstName, u.LastName); err != nil {
		return err
	}
	if next == current {
		verr := &ValidationError{}
		verr.Add("newPassword", "New password must be different from the current password")
		return verr
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	log.Info("password changed", "user_id", u.ID)
	return nil
}
