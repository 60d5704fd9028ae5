// Package scheduler runs the periodic deal maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/rabbitmq"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const jobTimeout = 2 * time.Minute

// Expirer moves deals past their expiry to expired.
type Expirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// Repository is the storage the jobs read and prune.
type Repository interface {
	FindDealsExpiringBetween(ctx context.Context, from, to time.Time) ([]models.DealExpiringEvent, error)
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Publisher sends events to the notification exchange.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service holds the jobs and the cron runner.
type Service struct {
	expirer   Expirer
	repo      Repository
	publisher Publisher
	clock     clock.Clock
	cfg       config.Scheduler
	cron      *cron.Cron
	log       *slog.Logger
}

func NewSchedulerService(expirer Expirer, repo Repository, publisher Publisher, clk clock.Clock, cfg config.Scheduler, log *slog.Logger) *Service {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	return &Service{
		expirer:   expirer,
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		cron:      cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cronLogger), cron.Recover(cronLogger))),
		log:       log,
	}
}

// Start registers the jobs and starts the cron runner. ctx bounds every job run.
func (s *Service) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context)
	}{
		{name: "expire deals", spec: s.cfg.ExpireDealsSchedule, run: s.ExpireDeals},
		{name: "deals expiring soon", spec: s.cfg.ExpiringSoonSchedule, run: s.NotifyExpiringSoon},
		{name: "prune notifications", spec: s.cfg.PruneSchedule, run: s.PruneNotifications},
	}
	for _, job := range jobs {
		run := job.run
		if _, err := s.cron.AddFunc(job.spec, func() {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()
			run(jobCtx)
		}); err != nil {
			return err
		}
		s.log.Info("scheduled job", slog.String("job", job.name), slog.String("schedule", job.spec))
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (s *Service) Stop() context.Context {
	return s.cron.Stop()
}

// ExpireDeals flips due deals to expired.
func (s *Service) ExpireDeals(ctx context.Context) {
	n, err := s.expirer.ExpireDue(ctx)
	if err != nil {
		s.log.Error("failed to expire deals", sl.Err(err))
		return
	}
	s.log.Info("expire deals finished", slog.Int64("count", n))
}

// NotifyExpiringSoon publishes one event per live deal expiring within the next day.
func (s *Service) NotifyExpiringSoon(ctx context.Context) {
	now := s.clock.Now()
	events, err := s.repo.FindDealsExpiringBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		s.log.Error("failed to find expiring deals", sl.Err(err))
		return
	}
	if len(events) == 0 {
		s.log.Info("no deals expiring soon")
		return
	}
	s.log.Info("found deals expiring soon", slog.Int("count", len(events)))
	for _, e := range events {
		if err := s.publisher.Publish(rabbitmq.RoutingDealExpiring, e); err != nil {
			s.log.Error("failed to publish message", sl.Err(err), slog.String("deal_id", e.DealID))
		}
	}
}

// PruneNotifications deletes read notifications older than the retention window.
func (s *Service) PruneNotifications(ctx context.Context) {
	n, err := s.repo.DeleteNotificationsBefore(ctx, s.clock.Now().Add(-s.cfg.NotificationRetention))
	if err != nil {
		s.log.Error("failed to prune notifications", sl.Err(err))
		return
	}
	s.log.Info("pruned notifications", slog.Int64("count", n))
}
