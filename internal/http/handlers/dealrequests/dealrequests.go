// Package dealrequests serves buyer "looking for" posts.
package dealrequests

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	drservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/dealrequests"
)

type Service interface {
	Create(ctx context.Context, buyerID string, in models.DealRequestInput) (*models.DealRequest, error)
	Get(ctx context.Context, id string) (*models.DealRequest, error)
	List(ctx context.Context, f drservice.Filter) ([]*models.DealRequest, error)
	Close(ctx context.Context, buyerID, id string) error
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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, drservice.ErrRequestNotFound):
		request.Fail(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, drservice.ErrInvalidBudget):
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error("deal request operation failed", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Create godoc
// @Summary Post a deal request
// @Tags DealRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DealRequestInput true "Request"
// @Success 201 {object} response.Response{data=models.DealRequest}
// @Router /deal-requests [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dealrequests.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var in models.DealRequestInput
	if !request.Decode(w, r, log, h.validate, &in) {
		return
	}

	dr, err := h.service.Create(r.Context(), caller.UserID, in)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusCreated, dr)
}

// List godoc
// @Summary List open deal requests
// @Tags DealRequests
// @Produce json
// @Param category query string false "Category"
// @Param buyerId query string false "Buyer id"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]models.DealRequest}
// @Router /deal-requests [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dealrequests.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	f := drservice.Filter{
		Category: r.URL.Query().Get("category"),
		BuyerID:  r.URL.Query().Get("buyerId"),
	}
	f.Limit, f.Offset = request.Page(r)

	items, err := h.service.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, items)
}

// Get godoc
// @Summary Get a deal request
// @Tags DealRequests
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} response.Response{data=models.DealRequest}
// @Failure 404 {object} response.ErrorResponse
// @Router /deal-requests/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dealrequests.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	dr, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, dr)
}

// Close godoc
// @Summary Close my deal request
// @Tags DealRequests
// @Security BearerAuth
// @Param id path string true "Request id"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /deal-requests/{id}/close [post]
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dealrequests.close"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	if err := h.service.Close(r.Context(), caller.UserID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
