// Package auth serves registration and login.
package auth

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// Service is the account logic behind the handlers.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

// Handler serves /api/auth.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}
