package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	authservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/auth"
)

// Register godoc
// @Summary Register an account
// @Description Creates a buyer or supplier account with a zero credit balance.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account details"
// @Success 201 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Email already registered"
// @Failure 422 {object} response.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RegisterRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	switch {
	case errors.Is(err, authservice.ErrEmailTaken):
		request.Fail(w, r, http.StatusConflict, "email already registered")
		return
	case errors.Is(err, authservice.ErrInvalidRole):
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Error("failed to register user", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "could not register user")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	request.OK(w, r, http.StatusCreated, user)
}
