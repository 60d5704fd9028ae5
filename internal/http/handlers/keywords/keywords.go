// Package keywords serves the buyer's deal-alert keyword subscriptions.
package keywords

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	keywordservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/keywords"
)

type Service interface {
	Add(ctx context.Context, userID, term string) (*models.Keyword, error)
	Remove(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]*models.Keyword, error)
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

// Add godoc
// @Summary Subscribe to a keyword
// @Tags Keywords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.KeywordRequest true "Keyword"
// @Success 201 {object} response.Response{data=models.Keyword}
// @Failure 409 {object} response.ErrorResponse "Already subscribed"
// @Router /keywords [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.keywords.add"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.KeywordRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	kw, err := h.service.Add(r.Context(), caller.UserID, req.Keyword)
	switch {
	case errors.Is(err, keywordservice.ErrKeywordExists):
		request.Fail(w, r, http.StatusConflict, err.Error())
		return
	case errors.Is(err, keywordservice.ErrInvalidKeyword):
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Error("failed to add keyword", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusCreated, kw)
}

// List godoc
// @Summary List my keywords
// @Tags Keywords
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Keyword}
// @Router /keywords [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.keywords.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	kws, err := h.service.List(r.Context(), caller.UserID)
	if err != nil {
		log.Error("failed to list keywords", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusOK, kws)
}

// Remove godoc
// @Summary Unsubscribe from a keyword
// @Tags Keywords
// @Security BearerAuth
// @Param id path string true "Keyword id"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /keywords/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.keywords.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	err := h.service.Remove(r.Context(), caller.UserID, chi.URLParam(r, "id"))
	if errors.Is(err, keywordservice.ErrKeywordNotFound) {
		request.Fail(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Error("failed to remove keyword", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
