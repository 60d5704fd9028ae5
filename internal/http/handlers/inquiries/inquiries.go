// Package inquiries serves buyer inquiries and supplier replies.
package inquiries

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
	inquiryservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/inquiries"
)

type Service interface {
	Create(ctx context.Context, buyerID string, req models.InquiryRequest) (*models.Inquiry, error)
	Respond(ctx context.Context, supplierID, id, response string) (*models.Inquiry, error)
	Close(ctx context.Context, userID, id string) (*models.Inquiry, error)
	List(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Inquiry, error)
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

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, inquiryservice.ErrInquiryNotFound), errors.Is(err, inquiryservice.ErrDealNotFound):
		request.Fail(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, inquiryservice.ErrNotParticipant):
		request.Fail(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, inquiryservice.ErrOwnDeal):
		request.Fail(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, inquiryservice.ErrDealNotActive), errors.Is(err, inquiryservice.ErrInvalidTransition):
		request.Fail(w, r, http.StatusConflict, err.Error())
	default:
		log.Error("inquiry operation failed", sl.Err(err))
		request.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Create godoc
// @Summary Send an inquiry
// @Description Buyer asks the supplier about a live deal. Increments the deal's inquiry count.
// @Tags Inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.InquiryRequest true "Inquiry"
// @Success 201 {object} response.Response{data=models.Inquiry}
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Deal is not active"
// @Router /inquiries [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.inquiries.create")

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.InquiryRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	inq, err := h.service.Create(r.Context(), caller.UserID, req)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusCreated, inq)
}

// List godoc
// @Summary List my inquiries
// @Description Buyers see inquiries they sent, suppliers those received.
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]models.Inquiry}
// @Router /inquiries [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.inquiries.list")

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	limit, offset := request.Page(r)
	items, err := h.service.List(r.Context(), caller.UserID, caller.Role, limit, offset)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, items)
}

// Respond godoc
// @Summary Reply to an inquiry
// @Tags Inquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inquiry id"
// @Param request body models.InquiryResponseRequest true "Reply"
// @Success 200 {object} response.Response{data=models.Inquiry}
// @Failure 409 {object} response.ErrorResponse
// @Router /inquiries/{id}/respond [post]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.inquiries.respond")

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	var req models.InquiryResponseRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	inq, err := h.service.Respond(r.Context(), caller.UserID, chi.URLParam(r, "id"), req.Response)
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, inq)
}

// Close godoc
// @Summary Close an inquiry
// @Tags Inquiries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inquiry id"
// @Success 200 {object} response.Response{data=models.Inquiry}
// @Router /inquiries/{id}/close [post]
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.inquiries.close")

	caller, ok := request.Caller(w, r)
	if !ok {
		return
	}
	inq, err := h.service.Close(r.Context(), caller.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, log, err)
		return
	}
	request.OK(w, r, http.StatusOK, inq)
}
