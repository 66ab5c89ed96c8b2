package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/growersgate/gate/internal/gate/store"
)

// HousekeepingService periodically removes expired password resets, revoked
// tokens and failure counters so those tables do not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. A non-positive interval means
// one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to end it.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs one sweep. Each table is swept independently so one
// failure does not stop the others. It returns the number of rows removed.
func (s *HousekeepingService) RunOnce(ctx context.Context) int64 {
	now := s.Now()
	s.Logger.Debug("starting housekeeping cleanup")

	sweeps := []struct {
		name string
		fn   func(context.Context, time.Time) (int64, error)
	}{
		{"password_resets", s.Store.PasswordResets().DeleteExpiredPasswordResets},
		{"revoked_tokens", s.Store.RevokedTokens().DeleteExpiredRevokedTokens},
		{"failure_counters", s.Store.FailureCounters().DeleteExpiredFailureCounters},
	}

	var total int64
	for _, sw := range sweeps {
		n, err := sw.fn(ctx, now)
		if err != nil {
			s.Logger.Error("housekeeping sweep failed", "table", sw.name, "error", err)
			continue
		}
		total += n
		if n > 0 {
			s.Logger.Debug("housekeeping sweep", "table", sw.name, "deleted", n)
		}
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
	return total
}
