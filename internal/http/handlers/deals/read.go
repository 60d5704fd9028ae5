package deals

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// List godoc
// @Summary List live deals
// @Description Active, unexpired deals. Hot deals come first, then newest first.
// @Tags Deals
// @Produce json
// @Param type query string false "hot or regular"
// @Param search query string false "Matches title and description"
// @Param category query string false "Category"
// @Param supplierId query string false "Supplier id"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]models.Deal}
// @Router /deals [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deals.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	filter := models.DealFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Category:   q.Get("category"),
		SupplierID: q.Get("supplierId"),
	}
	switch t := models.DealType(q.Get("type")); t {
	case models.DealTypeHot, models.DealTypeRegular:
		filter.Type = t
	case "":
	default:
		request.Fail(w, r, http.StatusBadRequest, "type must be hot or regular")
		return
	}
	filter.Limit, filter.Offset = request.Page(r)

	deals, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, deals)
}

// Get godoc
// @Summary Get a deal
// @Description Returns the deal and counts the view.
// @Tags Deals
// @Produce json
// @Param id path string true "Deal id"
// @Success 200 {object} response.Response{data=models.Deal}
// @Failure 404 {object} response.ErrorResponse
// @Router /deals/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deals.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	deal, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, deal)
}

// Mine godoc
// @Summary List my deals
// @Description Every deal of the calling supplier regardless of status.
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]models.Deal}
// @Router /me/deals [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.deals.mine"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	limit, offset := request.Page(r)
	deals, err := h.service.ListBySupplier(r.Context(), caller.UserID, limit, offset)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, deals)
}
