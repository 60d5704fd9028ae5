// Package deals serves the deal catalogue and the supplier deal management endpoints.
package deals

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/credits"
	dealservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/deals"
)

// Service is the deal logic behind the handlers.
type Service interface {
	Create(ctx context.Context, supplierID string, req models.CreateDealRequest) (*models.Deal, error)
	Get(ctx context.Context, id string) (*models.Deal, error)
	List(ctx context.Context, filter models.DealFilter) ([]*models.Deal, error)
	ListBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*models.Deal, error)
	Update(ctx context.Context, supplierID, id string, patch models.DealPatch) (*models.Deal, error)
	SetStatus(ctx context.Context, supplierID, id string, status models.DealStatus) (*models.Deal, error)
	Reactivate(ctx context.Context, supplierID, id string) (*models.Deal, error)
}

// Handler serves /api/deals.
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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, dealservice.ErrDealNotFound):
		request.Fail(w, r, http.StatusNotFound, "deal not found")
	case errors.Is(err, dealservice.ErrNotOwner):
		request.Fail(w, r, http.StatusForbidden, "deal belongs to another supplier")
	case errors.Is(err, credits.ErrInsufficientCredits):
		request.Fail(w, r, http.StatusPaymentRequired, "insufficient credits")
	case errors.Is(err, dealservice.ErrInvalidPrice), errors.Is(err, dealservice.ErrInvalidExpiry):
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, dealservice.ErrInvalidTransition):
		request.Fail(w, r, http.StatusConflict, err.Error())
	default:
		log.Error("deal operation failed", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}
