// Package inquiries carries buyer questions about a deal to its supplier.
package inquiries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrInquiryNotFound   = errors.New("inquiry not found")
	ErrDealNotFound      = errors.New("deal not found")
	ErrDealNotActive     = errors.New("deal is not active")
	ErrOwnDeal           = errors.New("cannot inquire about your own deal")
	ErrNotParticipant    = errors.New("not a participant of this inquiry")
	ErrInvalidTransition = errors.New("invalid inquiry status transition")
)

// Repository is the inquiry storage.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	IncrementDealInquiryCount(ctx context.Context, id string) error
	CreateInquiry(ctx context.Context, i *models.Inquiry) error
	GetInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	UpdateInquiry(ctx context.Context, id string, status models.InquiryStatus, response string, now time.Time) error
	ListInquiries(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Inquiry, error)
}

// Service handles inquiries.
type Service struct {
	repo  Repository
	clock clock.Clock
	log   *slog.Logger
}

func NewInquiryService(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{repo: repo, clock: clk, log: log}
}

// Create records an inquiry about a live deal and counts it on the deal.
func (s *Service) Create(ctx context.Context, buyerID string, req models.InquiryRequest) (*models.Inquiry, error) {
	const op = "inquiries.Create"

	var inquiry *models.Inquiry
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		deal, err := s.repo.GetDeal(ctx, req.DealID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrDealNotFound
			}
			return err
		}
		now := s.clock.Now()
		if !deal.IsLive(now) {
			return ErrDealNotActive
		}
		if deal.SupplierID == buyerID {
			return ErrOwnDeal
		}

		inquiry = &models.Inquiry{
			ID:         uuid.NewString(),
			DealID:     deal.ID,
			BuyerID:    buyerID,
			SupplierID: deal.SupplierID,
			Message:    req.Message,
			Quantity:   req.Quantity,
			Status:     models.InquiryPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		// The counter update takes the deal row lock before the insert's foreign key check does.
		if err := s.repo.IncrementDealInquiryCount(ctx, deal.ID); err != nil {
			return err
		}
		return s.repo.CreateInquiry(ctx, inquiry)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("inquiry created", slog.String("inquiry_id", inquiry.ID), slog.String("deal_id", inquiry.DealID))
	return inquiry, nil
}

// Respond stores the supplier's answer to a pending inquiry.
func (s *Service) Respond(ctx context.Context, supplierID, id, response string) (*models.Inquiry, error) {
	inquiry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.SupplierID != supplierID {
		return nil, ErrNotParticipant
	}
	if inquiry.Status != models.InquiryPending {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	if err := s.repo.UpdateInquiry(ctx, id, models.InquiryResponded, response, now); err != nil {
		return nil, err
	}
	inquiry.Status = models.InquiryResponded
	inquiry.Response = response
	inquiry.UpdatedAt = now
	return inquiry, nil
}

// Close ends an inquiry on behalf of either party.
func (s *Service) Close(ctx context.Context, userID, id string) (*models.Inquiry, error) {
	inquiry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.BuyerID != userID && inquiry.SupplierID != userID {
		return nil, ErrNotParticipant
	}
	if inquiry.Status == models.InquiryClosed {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	if err := s.repo.UpdateInquiry(ctx, id, models.InquiryClosed, "", now); err != nil {
		return nil, err
	}
	inquiry.Status = models.InquiryClosed
	inquiry.UpdatedAt = now
	return inquiry, nil
}

// List returns received inquiries for suppliers and sent inquiries otherwise.
func (s *Service) List(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Inquiry, error) {
	return s.repo.ListInquiries(ctx, userID, role, limit, offset)
}

func (s *Service) get(ctx context.Context, id string) (*models.Inquiry, error) {
	inquiry, err := s.repo.GetInquiry(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, err
	}
	return inquiry, nil
}
