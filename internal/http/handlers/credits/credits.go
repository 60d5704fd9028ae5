// Package credits serves the caller's credit balance and ledger.
package credits

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	creditservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/credits"
)

type Service interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// BalanceResponse carries the current balance.
type BalanceResponse struct {
	Credits decimal.Decimal `json:"credits"`
}

// Balance godoc
// @Summary Credit balance
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=BalanceResponse}
// @Router /credits/balance [get]
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.credits.balance"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	balance, err := h.service.Balance(r.Context(), caller.UserID)
	if err != nil {
		if errors.Is(err, creditservice.ErrUserNotFound) {
			request.Fail(w, r, http.StatusNotFound, "user not found")
			return
		}
		log.Error("failed to read balance", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusOK, BalanceResponse{Credits: balance})
}

// Transactions godoc
// @Summary Credit ledger
// @Description Purchases, charges and refunds, newest first.
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]models.CreditTransaction}
// @Router /credits/transactions [get]
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.credits.transactions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	limit, offset := request.Page(r)
	txs, err := h.service.ListTransactions(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		log.Error("failed to list transactions", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusOK, txs)
}
