package service

import (
	"context"
	"fmt"
	"time"

	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/pkg/slogx"
)

const (
	// MaxSecondFactorAttempts caps wrong codes per challenge and per user
	// within FailureWindow.
	MaxSecondFactorAttempts = 5
	// MaxPasswordAttempts caps password attempts per email within
	// FailureWindow, whatever address the requests come from.
	MaxPasswordAttempts  = 10
	DefaultFailureWindow = 15 * time.Minute
)

// AttemptLimits bounds the failures kept in store.FailureCounters. Zero
// values fall back to the package defaults.
type AttemptLimits struct {
	MaxAttempts         int
	MaxPasswordAttempts int
	FailureWindow       time.Duration
}

func (l AttemptLimits) maxAttempts() int {
	if l.MaxAttempts > 0 {
		return l.MaxAttempts
	}
	return MaxSecondFactorAttempts
}

func (l AttemptLimits) maxPasswordAttempts() int {
	if l.MaxPasswordAttempts > 0 {
		return l.MaxPasswordAttempts
	}
	return MaxPasswordAttempts
}

func (l AttemptLimits) failureWindow() time.Duration {
	if l.FailureWindow > 0 {
		return l.FailureWindow
	}
	return DefaultFailureWindow
}

func userKey(userID string) string    { return "2fa:user:" + userID }
func challengeKey(jti string) string  { return "2fa:challenge:" + jti }
func passwordKey(email string) string { return "login:email:" + email }

// checkUserAttempts counts every second factor attempt for the user and
// refuses once the window holds more than the cap. A success resets it.
func (l AttemptLimits) checkUserAttempts(ctx context.Context, fc store.FailureCounters, userID string) error {
	n, err := fc.Increment(ctx, userKey(userID), l.failureWindow())
	if err != nil {
		return fmt.Errorf("count 2FA attempts: %w", err)
	}
	if n > l.maxAttempts() {
		slogx.FromContext(ctx).Warn("2FA attempts exhausted", "user_id", userID)
		return ErrTooManyAttempts
	}
	return nil
}

func (l AttemptLimits) resetUserAttempts(ctx context.Context, fc store.FailureCounters, userID string) {
	if err := fc.Reset(ctx, userKey(userID)); err != nil {
		slogx.FromContext(ctx).Warn("reset 2FA attempts failed", "user_id", userID, "err", err)
	}
}

// checkPasswordAttempts is keyed by the normalised email so unknown and
// known accounts lock out alike.
func (l AttemptLimits) checkPasswordAttempts(ctx context.Context, fc store.FailureCounters, email string) error {
	n, err := fc.Increment(ctx, passwordKey(email), l.failureWindow())
	if err != nil {
		return fmt.Errorf("count login attempts: %w", err)
	}
	if n > l.maxPasswordAttempts() {
		slogx.FromContext(ctx).Warn("login attempts exhausted", "attempts", n)
		return ErrTooManyLoginAttempts
	}
	return nil
}

func (l AttemptLimits) resetPasswordAttempts(ctx context.Context, fc store.FailureCounters, email string) {
	if err := fc.Reset(ctx, passwordKey(email)); err != nil {
		slogx.FromContext(ctx).Warn("reset login attempts failed", "err", err)
	}
}
