package payments

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	paymentservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/payment"
)

const maxNotifyBytes = 64 << 10

// Notify godoc
// @Summary PayFast ITN
// @Description Instant transaction notification from PayFast. Replays of processed payments are acknowledged.
// @Tags Payments
// @Accept x-www-form-urlencoded
// @Success 200
// @Failure 400
// @Failure 404
// @Router /payments/payfast/notify [post]
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payments.notify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotifyBytes))
	if err != nil {
		log.Error("failed to read notify body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	err = h.service.HandleITN(r.Context(), string(body))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, paymentservice.ErrInvalidITN), errors.Is(err, paymentservice.ErrAmountMismatch):
		log.Warn("notification rejected", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, paymentservice.ErrPaymentNotFound):
		log.Warn("notification for unknown payment", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
	default:
		log.Error("failed to process notification", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}
