package payments

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	paymentservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/payment"
)

// Purchase godoc
// @Summary Buy credits
// @Description Creates a pending payment and returns the signed PayFast form the browser must post.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PurchaseRequest true "Credits to buy"
// @Success 201 {object} response.Response{data=models.Checkout}
// @Failure 422 {object} response.ErrorResponse
// @Router /credits/purchase [post]
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payments.purchase"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.PurchaseRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	checkout, err := h.service.StartPurchase(r.Context(), caller.UserID, req.Credits)
	if err != nil {
		if errors.Is(err, paymentservice.ErrInvalidCredits) {
			request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Error("failed to start purchase", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	log.Info("checkout created", slog.String("payment_id", checkout.PaymentID))
	request.OK(w, r, http.StatusCreated, checkout)
}

// List godoc
// @Summary List my payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]models.Payment}
// @Router /payments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payments.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	limit, offset := request.Page(r)
	payments, err := h.service.ListPayments(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusOK, payments)
}
