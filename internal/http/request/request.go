// Package request decodes and validates handler input.
package request

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/middlewarectx"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/response"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
)

const maxBodyBytes = 1 << 20

// Decode reads a JSON body into dst and validates it. On failure it writes
// the error reply and returns false.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		Fail(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		log.Warn("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return false
		}
		Fail(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Caller returns the authenticated identity or writes 401.
func Caller(w http.ResponseWriter, r *http.Request) (middlewarectx.Identity, bool) {
	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		Fail(w, r, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// Page reads limit and offset query parameters. Invalid values fall back to zero,
// which the storage layer replaces with its defaults.
func Page(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

// Fail writes an error envelope with status.
func Fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, response.Error(msg))
}

// OK writes data in the success envelope with status.
func OK(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, response.OKWithData(data))
}
