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

// LoginResponse carries the access token and the account.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login godoc
// @Summary Log in
// @Description Checks the credentials and returns a JWT access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=LoginResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 422 {object} response.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			log.Warn("login rejected")
			request.Fail(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error("login failed", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("login success", slog.String("user_id", user.ID))
	request.OK(w, r, http.StatusOK, LoginResponse{Token: token, User: user})
}
