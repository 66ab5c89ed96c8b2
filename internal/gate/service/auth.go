package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/growersgate/gate/internal/gate/domain"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/cryptox"
	"github.com/growersgate/gate/pkg/idx"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/growersgate/gate/pkg/slogx"
)

// AuthService runs registration, login and the second factor step.
type AuthService struct {
	Store     store.Store
	Tokens    *TokenService
	TOTP      *TOTP
	Validator *Validator

	AttemptLimits

	Now func() time.Time
}

type RegisterResult struct {
	User       domain.User
	Token      string
	Enrollment domain.Enrollment
}

type LoginInput struct {
	Email         string
	Password      string
	TwoFactorCode string
}

// AuthResult is a completed login. When ChallengeRequired is set Token is a
// challenge token that only the second factor routes accept.
type AuthResult struct {
	User              domain.User
	Token             string
	ChallengeRequired bool
	DashboardRoute    string
}

type RecoveryResult struct {
	AuthResult
	RemainingCodes int
}

// DashboardView is the role specific landing payload.
type DashboardView struct {
	Message string
	Role    domain.Role
	UserID  string
	Email   string
	Widgets []string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates a user with 2FA disabled and returns a session token plus
// the enrollment payload for the generated secret.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	log := slogx.FromContext(ctx)
	in = in.Normalize()

	role, err := s.Validator.ValidateRegistration(in, false)
	if err != nil {
		return RegisterResult{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	enrollment, err := s.TOTP.GenerateSecret(in.Email)
	if err != nil {
		return RegisterResult{}, err
	}

	now := s.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		TOTPSecret:   enrollment.Secret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return RegisterResult{}, ErrConflict
		}
		return RegisterResult{}, fmt.Errorf("create user: %w", err)
	}

	issued, err := s.Tokens.Issue(u, jwtx.UseSession, []string{jwtx.AMRPassword}, 0)
	if err != nil {
		return RegisterResult{}, err
	}

	log.Info("user registered", "user_id", u.ID, "role", u.Role)
	return RegisterResult{User: u, Token: issued.Token, Enrollment: enrollment}, nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equaliseTiming burns roughly the same time as a real password check so a
// missing account cannot be told apart by latency.
func equaliseTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("growers-gate-timing-equaliser")
	})
	if dummyHash != "" {
		_ = cryptox.VerifyPassword(password, dummyHash)
	}
}

// Login checks the password and, when 2FA is on, either verifies the supplied
// code or hands back a challenge token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	log := slogx.FromContext(ctx)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.checkPasswordAttempts(ctx, s.Store.FailureCounters(), email); err != nil {
		return AuthResult{}, err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("get user: %w", err)
		}
		equaliseTiming(in.Password)
		log.Warn("login failed", "reason", "unknown_account")
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(in.Password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash unusable", "user_id", u.ID, "err", err)
		}
		log.Warn("login failed", "reason", "bad_password", "user_id", u.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	s.resetPasswordAttempts(ctx, s.Store.FailureCounters(), email)
	s.upgradeHash(ctx, u, in.Password)

	if !u.TwoFactorEnabled {
		return s.completeLogin(u, []string{jwtx.AMRPassword})
	}

	if strings.TrimSpace(in.TwoFactorCode) == "" {
		issued, err := s.Tokens.Issue(u, jwtx.UseChallenge, []string{jwtx.AMRPassword}, 0)
		if err != nil {
			return AuthResult{}, err
		}
		log.Info("2FA challenge issued", "user_id", u.ID)
		return AuthResult{User: u, Token: issued.Token, ChallengeRequired: true}, nil
	}

	if err := s.checkUserAttempts(ctx, s.Store.FailureCounters(), u.ID); err != nil {
		return AuthResult{}, err
	}
	if !s.TOTP.Verify(u.TOTPSecret, in.TwoFactorCode, s.now()) {
		log.Warn("2FA code rejected", "user_id", u.ID, "step", "login")
		return AuthResult{}, ErrInvalidTwoFactor
	}
	s.resetUserAttempts(ctx, s.Store.FailureCounters(), u.ID)

	return s.completeLogin(u, []string{jwtx.AMRPassword, jwtx.AMROTP})
}

// VerifyTwoFactor completes a login from a challenge, or steps up a session,
// with a TOTP code.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, c jwtx.Claims, code string) (AuthResult, error) {
	log := slogx.FromContext(ctx)

	u, err := s.userFromClaims(ctx, c)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.checkUserAttempts(ctx, s.Store.FailureCounters(), u.ID); err != nil {
		return AuthResult{}, err
	}

	if !s.TOTP.Verify(u.TOTPSecret, code, s.now()) {
		log.Warn("2FA code rejected", "user_id", u.ID, "step", "verify")
		return AuthResult{}, s.challengeFailure(ctx, c, ErrInvalidTwoFactor)
	}

	return s.finishSecondFactor(ctx, u, c, jwtx.AMROTP)
}

// VerifyTwoFactorRecovery is VerifyTwoFactor with a single-use recovery code.
// email must belong to the token's subject.
func (s *AuthService) VerifyTwoFactorRecovery(ctx context.Context, c jwtx.Claims, email, code string) (RecoveryResult, error) {
	log := slogx.FromContext(ctx)

	u, err := s.userFromClaims(ctx, c)
	if err != nil {
		return RecoveryResult{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), u.Email) {
		log.Warn("recovery code rejected", "user_id", u.ID, "reason", "email_mismatch")
		return RecoveryResult{}, ErrInvalidRecoveryCode
	}
	if err := s.checkUserAttempts(ctx, s.Store.FailureCounters(), u.ID); err != nil {
		return RecoveryResult{}, err
	}

	code = strings.TrimSpace(code)
	consumed := false
	if u.TwoFactorEnabled && code != "" {
		consumed, err = s.Store.RecoveryCodes().ConsumeRecoveryCode(ctx, u.ID, cryptox.FingerprintToken(code))
		if err != nil {
			return RecoveryResult{}, fmt.Errorf("consume recovery code: %w", err)
		}
	}
	if !consumed {
		log.Warn("recovery code rejected", "user_id", u.ID, "reason", "unknown_code")
		return RecoveryResult{}, s.challengeFailure(ctx, c, ErrInvalidRecoveryCode)
	}

	res, err := s.finishSecondFactor(ctx, u, c, jwtx.AMRRecovery)
	if err != nil {
		return RecoveryResult{}, err
	}
	remaining, err := s.Store.RecoveryCodes().CountRecoveryCodes(ctx, u.ID)
	if err != nil {
		return RecoveryResult{}, fmt.Errorf("count recovery codes: %w", err)
	}
	log.Info("recovery code used", "user_id", u.ID, "remaining", remaining)
	return RecoveryResult{AuthResult: res, RemainingCodes: remaining}, nil
}

// Dashboard returns the landing view for the caller's role.
func (s *AuthService) Dashboard(ctx context.Context, c jwtx.Claims) (DashboardView, error) {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		slogx.FromContext(ctx).Warn("dashboard denied", "user_id", c.Subject, "role", c.Role)
		return DashboardView{}, ErrAccessDenied
	}

	v := DashboardView{Role: role, UserID: c.Subject, Email: c.Email}
	switch role {
	case domain.RoleFarmer:
		v.Message = "Welcome to the farmer dashboard"
		v.Widgets = []string{"products", "orders", "deliveries", "analytics"}
	case domain.RoleCustomer:
		v.Message = "Welcome to the user dashboard"
		v.Widgets = []string{"products", "cart", "orders", "transactions"}
	case domain.RoleCommunity:
		v.Message = "Welcome to the community dashboard"
		v.Widgets = []string{"events", "members", "orders"}
	case domain.RoleAdmin:
		v.Message = "Welcome to the admin dashboard"
		v.Widgets = []string{"users", "analytics", "transactions"}
	}
	return v, nil
}

func (s *AuthService) completeLogin(u domain.User, amr []string) (AuthResult, error) {
	issued, err := s.Tokens.Issue(u, jwtx.UseSession, amr, 0)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, Token: issued.Token, DashboardRoute: u.Role.DashboardRoute()}, nil
}

func (s *AuthService) finishSecondFactor(ctx context.Context, u domain.User, c jwtx.Claims, method string) (AuthResult, error) {
	s.resetUserAttempts(ctx, s.Store.FailureCounters(), u.ID)

	amr := []string{jwtx.AMRPassword, method}
	res, err := s.completeLogin(u, amr)
	if err != nil {
		return AuthResult{}, err
	}

	if c.Use == jwtx.UseChallenge {
		if err := s.Tokens.Revoke(ctx, c); err != nil {
			return AuthResult{}, err
		}
		_ = s.Store.FailureCounters().Reset(ctx, challengeKey(c.ID))
	}
	slogx.FromContext(ctx).Info("2FA verified", "user_id", u.ID, "method", method)
	return res, nil
}

func (s *AuthService) userFromClaims(ctx context.Context, c jwtx.Claims) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, c.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// upgradeHash rewrites legacy or outdated hashes after a successful login.
// Failure only costs the upgrade.
func (s *AuthService) upgradeHash(ctx context.Context, u domain.User, password string) {
	if !cryptox.NeedsRehash(u.PasswordHash) {
		return
	}
	log := slogx.FromContext(ctx)
	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash)
	}
	if err != nil {
		log.Warn("password rehash failed", "user_id", u.ID, "err", err)
		return
	}
	log.Info("password hash upgraded", "user_id", u.ID)
}

// challengeFailure records a wrong code against a challenge token and revokes
// the token once it has seen the maximum number of failures.
func (s *AuthService) challengeFailure(ctx context.Context, c jwtx.Claims, cause error) error {
	if c.Use != jwtx.UseChallenge {
		return cause
	}
	n, err := s.Store.FailureCounters().Increment(ctx, challengeKey(c.ID), s.Tokens.ttlFor(jwtx.UseChallenge))
	if err != nil {
		return fmt.Errorf("count challenge failures: %w", err)
	}
	if n < s.maxAttempts() {
		return cause
	}
	if err := s.Tokens.Revoke(ctx, c); err != nil {
		return err
	}
	slogx.FromContext(ctx).Warn("2FA challenge revoked", "user_id", c.Subject, "failures", n)
	return ErrTooManyAttempts
}
