// Package notifications serves the in-app notification inbox.
package notifications

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	notificationservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/notifications"
)

type Service interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*notificationservice.Inbox, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// MarkAllResponse reports how many notifications changed.
type MarkAllResponse struct {
	Updated int64 `json:"updated"`
}

// List godoc
// @Summary Notification inbox
// @Description Newest first, with the unread count.
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=notifications.Inbox}
// @Router /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	limit, offset := request.Page(r)

	inbox, err := h.service.List(r.Context(), caller.UserID, unreadOnly, limit, offset)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusOK, inbox)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification id"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /notifications/{id}/read [patch]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	err := h.service.MarkRead(r.Context(), caller.UserID, chi.URLParam(r, "id"))
	if errors.Is(err, notificationservice.ErrNotificationNotFound) {
		request.Fail(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Error("failed to mark notification read", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=MarkAllResponse}
// @Router /notifications/read-all [patch]
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notifications.read_all"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	n, err := h.service.MarkAllRead(r.Context(), caller.UserID)
	if err != nil {
		log.Error("failed to mark notifications read", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	request.OK(w, r, http.StatusOK, MarkAllResponse{Updated: n})
}
