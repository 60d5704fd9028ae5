// Package dealrequests lets buyers post what they are looking for.
package dealrequests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrRequestNotFound = errors.New("deal request not found")
	ErrInvalidBudget   = errors.New("budget must be positive")
)

// Repository is the deal request storage.
type Repository interface {
	CreateDealRequest(ctx context.Context, r *models.DealRequest) error
	GetDealRequest(ctx context.Context, id string) (*models.DealRequest, error)
	ListOpenDealRequests(ctx context.Context, category, buyerID string, limit, offset int) ([]*models.DealRequest, error)
	CloseDealRequest(ctx context.Context, buyerID, id string) error
}

// Filter narrows the open request listing.
type Filter struct {
	Category string
	BuyerID  string
	Limit    int
	Offset   int
}

type Service struct {
	repo  Repository
	clock clock.Clock
	log   *slog.Logger
}

func NewDealRequestService(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{repo: repo, clock: clk, log: log}
}

// Create posts an open request.
func (s *Service) Create(ctx context.Context, buyerID string, in models.DealRequestInput) (*models.DealRequest, error) {
	const op = "dealrequests.Create"
	r := &models.DealRequest{
		ID:          uuid.NewString(),
		BuyerID:     buyerID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Status:      models.DealRequestOpen,
		CreatedAt:   s.clock.Now(),
	}
	if in.Budget != nil {
		if !in.Budget.IsPositive() {
			return nil, ErrInvalidBudget
		}
		r.Budget = decimal.NewNullDecimal(in.Budget.Round(2))
	}
	if err := s.repo.CreateDealRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("deal request created", slog.String("request_id", r.ID), slog.String("category", r.Category))
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.DealRequest, error) {
	r, err := s.repo.GetDealRequest(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	return r, err
}

// List returns open requests, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]*models.DealRequest, error) {
	return s.repo.ListOpenDealRequests(ctx, f.Category, f.BuyerID, f.Limit, f.Offset)
}

// Close closes one of the buyer's open requests.
func (s *Service) Close(ctx context.Context, buyerID, id string) error {
	if err := s.repo.CloseDealRequest(ctx, buyerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	return nil
}

