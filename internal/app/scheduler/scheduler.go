// Package scheduler wires the background job process: deal expiry, expiry
// reminders and notification pruning.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/cache"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/rabbitmq"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	creditservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/credits"
	dealservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/deals"
	notificationservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/notifications"
	schedulerservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/scheduler"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

// App is the scheduler process.
type App struct {
	schedulerService *schedulerservice.Service
	db               *repository.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := repository.CheckDatabaseReady(db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New connects storage and the broker. Migrations are owned by the API process,
// so it waits until the schema exists.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(ch)

	clk := clock.Real{}
	creditSvc := creditservice.NewCreditService(db, creditservice.NewPricing(cfg.Credits), clk, logger)
	notificationSvc := notificationservice.NewNotificationService(db, publisher, clk, logger)
	dealSvc := dealservice.NewDealService(db, creditSvc, notificationSvc, cache.Nop{}, clk, cfg.DealTTL, cfg.DealCacheTTL, logger)

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(dealSvc, db, publisher, clk, cfg.Scheduler, logger),
		db:               db,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run starts the cron jobs and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.schedulerService.Start(ctx); err != nil {
		closeResources(a.ch, a.conn, a.logger)
		_ = a.db.Close()
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutting down scheduler service")

	// Wait for running jobs before closing their connections.
	<-a.schedulerService.Stop().Done()

	closeResources(a.ch, a.conn, a.logger)
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
