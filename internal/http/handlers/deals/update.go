package deals

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// Update godoc
// @Summary Edit a deal
// @Tags Deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal id"
// @Param request body models.DealPatch true "Fields to change"
// @Success 200 {object} response.Response{data=models.Deal}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /deals/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deals.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var patch models.DealPatch
	if !request.Decode(w, r, log, h.validate, &patch) {
		return
	}

	deal, err := h.service.Update(r.Context(), caller.UserID, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, deal)
}

// SetStatus godoc
// @Summary Pause or resume a deal
// @Tags Deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal id"
// @Param request body models.StatusRequest true "New status"
// @Success 200 {object} response.Response{data=models.Deal}
// @Failure 409 {object} response.ErrorResponse "Expired deals must be reactivated"
// @Router /deals/{id}/status [patch]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deals.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.StatusRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	deal, err := h.service.SetStatus(r.Context(), caller.UserID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, deal)
}

// Reactivate godoc
// @Summary Reactivate a deal
// @Description Charges the current posting cost and extends an expired or paused deal. A live deal is returned unchanged.
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal id"
// @Success 200 {object} response.Response{data=models.Deal}
// @Failure 402 {object} response.ErrorResponse
// @Router /deals/{id}/reactivate [post]
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deals.reactivate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	deal, err := h.service.Reactivate(r.Context(), caller.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, deal)
}
