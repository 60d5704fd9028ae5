package deals

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// Create godoc
// @Summary Post a deal
// @Description Charges the posting cost, stores the deal and notifies buyers whose keywords match.
// @Tags Deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateDealRequest true "Deal"
// @Success 201 {object} response.Response{data=models.Deal}
// @Failure 402 {object} response.ErrorResponse "Insufficient credits"
// @Failure 422 {object} response.ErrorResponse
// @Router /deals [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deals.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.CreateDealRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	deal, err := h.service.Create(r.Context(), caller.UserID, req)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusCreated, deal)
}
