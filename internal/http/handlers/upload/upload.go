// Package upload accepts deal images and stores them in the object store.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/request"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
)

// MaxImageBytes caps an uploaded image.
const MaxImageBytes = 5 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store persists image bytes and returns their public URL.
type Store interface {
	UploadImage(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error)
}

type Handler struct {
	log   *slog.Logger
	store Store
}

func New(log *slog.Logger, store Store) *Handler {
	return &Handler{log: log, store: store}
}

// ImageResponse carries the stored image URL.
type ImageResponse struct {
	URL string `json:"url"`
}

// Image godoc
// @Summary Upload a deal image
// @Description Multipart form with an "image" file up to 5 MiB. JPEG, PNG, GIF and WebP are accepted.
// @Tags Upload
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image"
// @Success 201 {object} response.Response{data=ImageResponse}
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Router /upload/image [post]
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.upload.image"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(MaxImageBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			request.Fail(w, r, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		log.Warn("invalid multipart form", sl.Err(err))
		request.Fail(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		request.Fail(w, r, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > MaxImageBytes {
		request.Fail(w, r, http.StatusRequestEntityTooLarge, "image too large")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		log.Error("failed to read image", sl.Err(err))
		request.Fail(w, r, http.StatusBadRequest, "invalid image")
		return
	}
	if len(data) > MaxImageBytes {
		request.Fail(w, r, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	contentType := http.DetectContentType(data)
	if !allowedTypes[contentType] {
		request.Fail(w, r, http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}

	url, err := h.store.UploadImage(r.Context(), caller.UserID, header.Filename, contentType, data)
	if err != nil {
		log.Error("failed to store image", sl.Err(err))
		request.Fail(w, r, http.StatusBadGateway, "image storage unavailable")
		return
	}
	log.Info("image uploaded", slog.String("url", url), slog.Int("bytes", len(data)))
	request.OK(w, r, http.StatusCreated, ImageResponse{URL: url})
}
