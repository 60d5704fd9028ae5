// Package users serves the caller's profile and the admin account endpoints.
package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/credits"
	userservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/users"
)

type Service interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
	VerifySupplier(ctx context.Context, supplierID string) error
	Refund(ctx context.Context, userID string, req models.RefundRequest) (decimal.Decimal, error)
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
	case errors.Is(err, userservice.ErrUserNotFound), errors.Is(err, credits.ErrUserNotFound):
		request.Fail(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, userservice.ErrSupplierNotFound):
		request.Fail(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, credits.ErrInvalidAmount):
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error("user operation failed", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Me godoc
// @Summary My profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.User}
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.me"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	user, err := h.service.Profile(r.Context(), caller.UserID)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Edit my profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProfilePatch true "Fields to change"
// @Success 200 {object} response.Response{data=models.User}
// @Router /me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.update_me"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var patch models.ProfilePatch
	if !request.Decode(w, r, log, h.validate, &patch) {
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), caller.UserID, patch)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, user)
}

// VerifySupplier godoc
// @Summary Verify a supplier
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Supplier id"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/suppliers/{id}/verify [post]
func (h *Handler) VerifySupplier(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.verify_supplier"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.VerifySupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefundResponse carries the balance after a refund.
type RefundResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// Refund godoc
// @Summary Refund credits
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Param request body models.RefundRequest true "Refund"
// @Success 200 {object} response.Response{data=RefundResponse}
// @Router /admin/users/{id}/refund [post]
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.refund"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RefundRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}
	balance, err := h.service.Refund(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, RefundResponse{Balance: balance})
}
