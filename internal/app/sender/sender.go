// Package sender wires the e-mail process that consumes notification events.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/rabbitmq"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/smtp"
	senderservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(transport, cfg.FrontendURL, clock.Real{}, logger),
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	consumers := []struct {
		queue   string
		handler func([]byte) error
	}{
		{rabbitmq.QueueDealMatched, a.senderService.SendDealMatched},
		{rabbitmq.QueueDealExpiring, a.senderService.SendDealExpiring},
	}
	for _, c := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, c.queue, c.handler); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", c.queue), sl.Err(err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
