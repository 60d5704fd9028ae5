// Package rates serves supplier rate tables.
package rates

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	rateservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/rates"
)

type Service interface {
	BulkUpload(ctx context.Context, supplierID string, rows []models.RateRow) ([]*models.RateEntry, error)
	List(ctx context.Context, supplierID string) ([]*models.RateEntry, error)
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

// BulkUpload godoc
// @Summary Replace my rate table
// @Description The whole table is replaced atomically. The first invalid row rejects the upload.
// @Tags Rates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BulkRatesRequest true "Rows"
// @Success 200 {object} response.Response{data=[]models.RateEntry}
// @Failure 422 {object} response.ErrorResponse
// @Router /rates/bulk-upload [post]
func (h *Handler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rates.bulk_upload"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.BulkRatesRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	entries, err := h.service.BulkUpload(r.Context(), caller.UserID, req.Rates)
	if errors.Is(err, rateservice.ErrInvalidRows) {
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		log.Error("failed to upload rates", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	log.Info("rate table replaced", slog.Int("rows", len(entries)))
	request.OK(w, r, http.StatusOK, entries)
}

// List godoc
// @Summary A supplier's rate table
// @Tags Rates
// @Produce json
// @Param supplierId query string true "Supplier id"
// @Success 200 {object} response.Response{data=[]models.RateEntry}
// @Failure 400 {object} response.ErrorResponse
// @Router /rates [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rates.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	supplierID := r.URL.Query().Get("supplierId")
	if supplierID == "" {
		request.Fail(w, r, http.StatusBadRequest, "supplierId is required")
		return
	}
	entries, err := h.service.List(r.Context(), supplierID)
	if err != nil {
		log.Error("failed to list rates", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusOK, entries)
}
