package coupons

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// Validate godoc
// @Summary Check a coupon code
// @Description Always 200. valid=false means the code is unknown, canRedeem=false that it is redeemed or expired.
// @Tags Coupons
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Success 200 {object} response.Response{data=models.CouponValidation}
// @Router /coupons/{code} [get]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupons.validate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	v, err := h.service.Validate(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, v)
}

// Redeem godoc
// @Summary Redeem a coupon
// @Description Supplier marks the coupon used. Every attempt is kept in the redemption history.
// @Tags Coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Param request body models.RedeemRequest false "Location and notes"
// @Success 200 {object} response.Response{data=models.Coupon}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Already redeemed or expired"
// @Router /coupons/{code}/redeem [post]
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupons.redeem"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.RedeemRequest
	if r.ContentLength != 0 {
		if !request.Decode(w, r, log, h.validate, &req) {
			return
		}
	}

	coupon, err := h.service.Redeem(r.Context(), caller.UserID, chi.URLParam(r, "code"), req)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, coupon)
}

// History godoc
// @Summary Redemption history
// @Tags Coupons
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Success 200 {object} response.Response{data=[]models.RedemptionAttempt}
// @Router /coupons/{code}/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupons.history"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	attempts, err := h.service.History(r.Context(), caller.UserID, chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, attempts)
}
