package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/cryptox"
	"github.com/growersgate/gate/pkg/slogx"
)

const recoveryCodeBytes = cryptox.TokenSize128

// TwoFactorService lets a signed in user turn TOTP on and off and manage
// recovery codes. The secret itself is created at registration and never
// rotated here.
// Wrong codes count against the same per-user limit as the login step.
type TwoFactorService struct {
	Store store.Store
	TOTP  *TOTP

	AttemptLimits

	Now func() time.Time
}

type TwoFactorSetup struct {
	Enrollment domain.Enrollment
	Enabled    bool
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Setup returns the enrollment payload for the stored secret.
func (s *TwoFactorService) Setup(ctx context.Context, userID string) (TwoFactorSetup, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return TwoFactorSetup{}, err
	}
	return TwoFactorSetup{
		Enrollment: domain.Enrollment{
			Secret: u.TOTPSecret,
			URI:    s.TOTP.EnrollmentURI(u.TOTPSecret, u.Email),
		},
		Enabled: u.TwoFactorEnabled,
	}, nil
}

// QRCode renders the enrollment URI of the user as a PNG.
func (s *TwoFactorService) QRCode(ctx context.Context, userID string, size int) ([]byte, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.TOTP.QRCode(u.TOTPSecret, u.Email, size)
}

// Enable turns 2FA on after a code proves the authenticator is set up, and
// returns the fresh recovery codes. They are shown once.
func (s *TwoFactorService) Enable(ctx context.Context, userID, code string) ([]string, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.TwoFactorEnabled {
		return nil, ErrTwoFactorEnabled
	}
	if err := s.verifyCode(ctx, u, code, "enable"); err != nil {
		return nil, err
	}

	codes, err := generateRecoveryCodes()
	if err != nil {
		return nil, err
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := replaceRecoveryCodes(ctx, tx, u.ID, codes); err != nil {
			return err
		}
		return tx.Users().SetTwoFactorEnabled(ctx, u.ID, true)
	})
	if err != nil {
		return nil, fmt.Errorf("enable 2FA: %w", err)
	}

	slogx.FromContext(ctx).Info("2FA enabled", "user_id", u.ID)
	return codes, nil
}

// Disable turns 2FA off and drops the recovery codes. The secret is kept so
// re-enabling does not need a new authenticator entry.
func (s *TwoFactorService) Disable(ctx context.Context, userID, code string) error {
	u, err := s.enabledUser(ctx, userID, code, "disable")
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RecoveryCodes().DeleteAllRecoveryCodes(ctx, u.ID); err != nil {
			return err
		}
		return tx.Users().SetTwoFactorEnabled(ctx, u.ID, false)
	})
	if err != nil {
		return fmt.Errorf("disable 2FA: %w", err)
	}

	slogx.FromContext(ctx).Info("2FA disabled", "user_id", u.ID)
	return nil
}

// RegenerateRecoveryCodes replaces every recovery code of the user.
func (s *TwoFactorService) RegenerateRecoveryCodes(ctx context.Context, userID, code string) ([]string, error) {
	u, err := s.enabledUser(ctx, userID, code, "regenerate")
	if err != nil {
		return nil, err
	}

	codes, err := generateRecoveryCodes()
	if err != nil {
		return nil, err
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return replaceRecoveryCodes(ctx, tx, u.ID, codes)
	})
	if err != nil {
		return nil, fmt.Errorf("regenerate recovery codes: %w", err)
	}

	slogx.FromContext(ctx).Info("recovery codes regenerated", "user_id", u.ID)
	return codes, nil
}

func (s *TwoFactorService) user(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *TwoFactorService) enabledUser(ctx context.Context, userID, code, step string) (domain.User, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if !u.TwoFactorEnabled {
		return domain.User{}, ErrTwoFactorNotEnabled
	}
	if err := s.verifyCode(ctx, u, code, step); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *TwoFactorService) verifyCode(ctx context.Context, u domain.User, code, step string) error {
	if err := s.checkUserAttempts(ctx, s.Store.FailureCounters(), u.ID); err != nil {
		return err
	}
	if !s.TOTP.Verify(u.TOTPSecret, code, s.now()) {
		slogx.FromContext(ctx).Warn("2FA code rejected", "user_id", u.ID, "step", step)
		return ErrInvalidTwoFactor
	}
	s.resetUserAttempts(ctx, s.Store.FailureCounters(), u.ID)
	return nil
}

func generateRecoveryCodes() ([]string, error) {
	codes := make([]string, domain.RecoveryCodeCount)
	for i := range codes {
		code, err := cryptox.GenerateToken(recoveryCodeBytes)
		if err != nil {
			return nil, fmt.Errorf("generate recovery code: %w", err)
		}
		codes[i] = code
	}
	return codes, nil
}

// replaceRecoveryCodes stores only fingerprints of codes.
func replaceRecoveryCodes(ctx context.Context, tx store.Tx, userID string, codes []string) error {
	if err := tx.RecoveryCodes().DeleteAllRecoveryCodes(ctx, userID); err != nil {
		return fmt.Errorf("delete recovery codes: %w", err)
	}
	for _, code := range codes {
		if err := tx.RecoveryCodes().CreateRecoveryCode(ctx, userID, cryptox.FingerprintToken(code)); err != nil {
			return fmt.Errorf("store recovery code: %w", err)
		}
	}
	return nil
}
