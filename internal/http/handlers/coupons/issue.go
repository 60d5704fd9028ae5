package coupons

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// Create godoc
// @Summary Claim a coupon
// @Description Issues a BDD-XXXXXX code for a live deal. An unredeemed, unexpired coupon for the same deal is returned instead of a new one.
// @Tags Coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CouponRequest true "Deal"
// @Success 201 {object} response.Response{data=models.Coupon}
// @Failure 409 {object} response.ErrorResponse "Deal is not active"
// @Router /coupons [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupons.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.CouponRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	coupon, err := h.service.Create(r.Context(), caller.UserID, req.DealID)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusCreated, coupon)
}

// List godoc
// @Summary List my coupons
// @Description Buyers see coupons they claimed, suppliers those issued against their deals.
// @Tags Coupons
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]models.Coupon}
// @Router /coupons [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupons.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	limit, offset := request.Page(r)
	coupons, err := h.service.List(r.Context(), caller.UserID, caller.Role, limit, offset)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, coupons)
}
