package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/app/sender"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/logger"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting notification sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize notification sender", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("notification sender stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("notification sender stopped gracefully")
}
