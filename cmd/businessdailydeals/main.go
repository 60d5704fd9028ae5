// Package main Business Daily Deals API
//
// @title           Business Daily Deals API
// @version         1.0
// @description     B2B marketplace: supplier deals paid with credits, buyer inquiries, coupons and keyword alerts.

// @contact.name   Business Daily Deals
// @contact.url    https://businessdailydeals.co.za

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/SimonStapletonCotton/businessdailydeals-sub001/docs"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/app/businessdailydeals"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/logger"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
)

func main() {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting businessdailydeals api", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := businessdailydeals.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("businessdailydeals api stopped gracefully")
}
