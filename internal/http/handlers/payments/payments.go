// Package payments serves credit purchases and the PayFast notify endpoint.
package payments

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

type Service interface {
	StartPurchase(ctx context.Context, userID string, credits int64) (*models.Checkout, error)
	HandleITN(ctx context.Context, body string) error
	ListPayments(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
}

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
