// Package users serves account profiles and the admin operations on them.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSupplierNotFound = errors.New("supplier not found")
)

// Repository is the user storage.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id string, patch models.ProfilePatch, now time.Time) error
	SetSupplierVerified(ctx context.Context, id string, now time.Time) error
}

// Refunder returns credits to a user.
type Refunder interface {
	RefundCredits(ctx context.Context, userID string, credits decimal.Decimal, dealID *string, reason string) (decimal.Decimal, error)
}

// Service manages profiles.
type Service struct {
	repo     Repository
	refunder Refunder
	clock    clock.Clock
	log      *slog.Logger
}

func NewUserService(repo Repository, refunder Refunder, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{repo: repo, refunder: refunder, clock: clk, log: log}
}

// Profile returns the user with the current balance.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies patch and returns the stored result.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	const op = "users.UpdateProfile"
	if err := s.repo.UpdateUserProfile(ctx, userID, patch, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Profile(ctx, userID)
}

// VerifySupplier marks a supplier account as verified.
func (s *Service) VerifySupplier(ctx context.Context, supplierID string) error {
	if err := s.repo.SetSupplierVerified(ctx, supplierID, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSupplierNotFound
		}
		return err
	}
	s.log.Info("supplier verified", slog.String("supplier_id", supplierID))
	return nil
}

// Refund credits a user on behalf of an admin.
func (s *Service) Refund(ctx context.Context, userID string, req models.RefundRequest) (decimal.Decimal, error) {
	balance, err := s.refunder.RefundCredits(ctx, userID, req.Credits, req.DealID, req.Reason)
	if err != nil {
		return decimal.Zero, err
	}
	s.log.Info("credits refunded",
		slog.String("user_id", userID),
		slog.String("credits", req.Credits.String()),
		slog.String("balance", balance.String()),
	)
	return balance, nil
}
