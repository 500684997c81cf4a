package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

// DefaultHousekeepingSchedule purges expired OTP records once an hour.
const DefaultHousekeepingSchedule = "@every 1h"

// HousekeepingService periodically deletes expired OTP records. The mongo
// driver also carries a TTL index, so this mostly matters for sqlite.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Schedule string
	Now      func() time.Time

	cron *cron.Cron
}

// NewHousekeepingService creates a housekeeping service. An empty schedule
// falls back to DefaultHousekeepingSchedule.
func NewHousekeepingService(st store.Store, logger *slog.Logger, schedule string) *HousekeepingService {
	if schedule == "" {
		schedule = DefaultHousekeepingSchedule
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Schedule: schedule,
		Now:      time.Now,
	}
}

// Start runs one cleanup right away and then registers the schedule. It
// returns an error only when the schedule cannot be parsed.
func (s *HousekeepingService) Start() error {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := c.AddFunc(s.Schedule, s.Cleanup); err != nil {
		return err
	}

	s.Cleanup()

	c.Start()
	s.cron = c
	s.Logger.Info("housekeeping service started", "schedule", s.Schedule)
	return nil
}

// Stop halts the scheduler and blocks until an in-flight cleanup returns.
func (s *HousekeepingService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.Logger.Info("housekeeping service stopped")
}

// Cleanup deletes every OTP record whose expiry has passed.
func (s *HousekeepingService) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.Store.OTPs().DeleteExpired(ctx, s.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired otps", "error", err)
		return
	}
	s.Logger.Debug("housekeeping cleanup completed", "otps_deleted", n)
}
