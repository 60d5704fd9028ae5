// Package businessdailydeals wires the marketplace HTTP API.
package businessdailydeals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/cache"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	authhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/auth"
	couponhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/coupons"
	credithandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/credits"
	dealrequesthandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/dealrequests"
	dealhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/deals"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/health"
	inquiryhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/inquiries"
	keywordhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/keywords"
	notificationhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/notifications"
	paymenthandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/payments"
	ratehandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/rates"
	uploadhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/upload"
	userhandler "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/users"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/middlewarectx"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/jwt"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/rabbitmq"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/migrations"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/paymentprovider"
	authservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/auth"
	couponservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/coupons"
	creditservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/credits"
	dealrequestservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/dealrequests"
	dealservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/deals"
	inquiryservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/inquiries"
	keywordservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/keywords"
	notificationservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/notifications"
	paymentservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/payment"
	rateservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/rates"
	userservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/users"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/objectstore"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

// App is the HTTP API process.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	redis  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New connects every backing service, runs migrations and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.Driver, cfg.DriverMigrationsPath()); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{logger: logger, db: db}
	checks := map[string]health.Pinger{"database": db}

	var dealCache dealservice.Cache = cache.Nop{}
	if cfg.AddressRedis != "" {
		a.redis, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache not initialized: %w", err)
		}
		dealCache = a.redis
		checks["redis"] = a.redis
	} else {
		logger.Warn("redis address not set, deal cache disabled")
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(a.ch)

	var images *objectstore.Store
	if cfg.Bucket != "" {
		images, err = objectstore.New(ctx, cfg.S3)
		if err != nil {
			a.close()
			return nil, err
		}
	} else {
		logger.Warn("s3 bucket not set, image upload disabled")
	}

	clk := clock.Real{}
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	creditSvc := creditservice.NewCreditService(db, creditservice.NewPricing(cfg.Credits), clk, logger)
	notificationSvc := notificationservice.NewNotificationService(db, publisher, clk, logger)
	dealSvc := dealservice.NewDealService(db, creditSvc, notificationSvc, dealCache, clk, cfg.DealTTL, cfg.DealCacheTTL, logger)
	paymentSvc := paymentservice.NewPaymentService(db, creditSvc, paymentprovider.NewClient(cfg.PayFast), clk, cfg.PayFast, cfg.Credits, logger)

	h := Handlers{
		Health:        health.New(logger, checks),
		Auth:          authhandler.New(logger, authservice.NewAuthService(db, tokens, clk, logger)),
		Users:         userhandler.New(logger, userservice.NewUserService(db, creditSvc, clk, logger)),
		Deals:         dealhandler.New(logger, dealSvc),
		Credits:       credithandler.New(logger, creditSvc),
		Payments:      paymenthandler.New(logger, paymentSvc),
		Inquiries:     inquiryhandler.New(logger, inquiryservice.NewInquiryService(db, clk, logger)),
		Coupons:       couponhandler.New(logger, couponservice.NewCouponService(db, clk, cfg.Coupons.TTL, logger)),
		Keywords:      keywordhandler.New(logger, keywordservice.NewKeywordService(db, clk, logger)),
		Notifications: notificationhandler.New(logger, notificationSvc),
		DealRequests:  dealrequesthandler.New(logger, dealrequestservice.NewDealRequestService(db, clk, logger)),
		Rates:         ratehandler.New(logger, rateservice.NewRateService(db, clk, logger)),
	}
	if images != nil {
		h.Upload = uploadhandler.New(logger, images)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, h, RouteOptions{
		Tokens:         tokens,
		Limiter:        middlewarectx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		AllowedOrigins: cfg.AllowedOrigins,
		Timeout:        cfg.TimeoutHTTP,
	})

	a.server = &http.Server{
		Addr:              cfg.AddressHTTP,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.TimeoutHTTP,
		WriteTimeout:      cfg.TimeoutHTTP + 5*time.Second,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return a, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
