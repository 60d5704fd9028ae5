// Package coupons serves coupon issue, verification and redemption.
package coupons

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	couponservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/coupons"
)

type Service interface {
	Create(ctx context.Context, buyerID, dealID string) (*models.Coupon, error)
	Validate(ctx context.Context, code string) (*models.CouponValidation, error)
	Redeem(ctx context.Context, supplierID, code string, req models.RedeemRequest) (*models.Coupon, error)
	History(ctx context.Context, supplierID, code string) ([]*models.RedemptionAttempt, error)
	List(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Coupon, error)
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
	case errors.Is(err, couponservice.ErrCouponNotFound):
		request.Fail(w, r, http.StatusNotFound, couponservice.MsgNotFound)
	case errors.Is(err, couponservice.ErrDealNotFound):
		request.Fail(w, r, http.StatusNotFound, "deal not found")
	case errors.Is(err, couponservice.ErrNotOwner):
		request.Fail(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, couponservice.ErrOwnDeal):
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, couponservice.ErrAlreadyRedeemed):
		request.Fail(w, r, http.StatusConflict, couponservice.MsgAlreadyRedeemed)
	case errors.Is(err, couponservice.ErrCouponExpired):
		request.Fail(w, r, http.StatusConflict, couponservice.MsgExpired)
	case errors.Is(err, couponservice.ErrDealNotActive):
		request.Fail(w, r, http.StatusConflict, err.Error())
	default:
		log.Error("coupon operation failed", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}
