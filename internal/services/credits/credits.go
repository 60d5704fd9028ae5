// Package credits keeps the supplier credit ledger. Every balance change appends a
// transaction row and updates the denormalised balance under a row lock, so the sum
// of a user's transactions always equals the stored balance.
package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("credit amount must be positive")
	ErrUserNotFound        = errors.New("user not found")
)

// Repository is the storage the ledger needs.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockUserBalance(ctx context.Context, id string) (decimal.Decimal, error)
	GetUserBalance(ctx context.Context, id string) (decimal.Decimal, error)
	UpdateUserBalance(ctx context.Context, id string, balance decimal.Decimal, now time.Time) error
	InsertCreditTransaction(ctx context.Context, t *models.CreditTransaction) error
	ListCreditTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

// Pricing holds the posting costs and the end of the free promotional window.
type Pricing struct {
	PromotionalPeriodEndsAt time.Time
	HotDealCost             decimal.Decimal
	RegularDealCost         decimal.Decimal
}

// NewPricing converts the configured costs.
func NewPricing(cfg config.Credits) Pricing {
	return Pricing{
		PromotionalPeriodEndsAt: cfg.PromotionalPeriodEndsAt.UTC(),
		HotDealCost:             decimal.NewFromFloat(cfg.HotDealCost).Round(2),
		RegularDealCost:         decimal.NewFromFloat(cfg.RegularDealCost).Round(2),
	}
}

// Service applies ledger operations.
type Service struct {
	repo    Repository
	pricing Pricing
	clock   clock.Clock
	log     *slog.Logger
}

// NewCreditService creates a ledger service.
func NewCreditService(repo Repository, pricing Pricing, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		pricing: pricing,
		clock:   clk,
		log:     log,
	}
}

// CalculateDealCredits returns the posting cost of a deal type at the current instant.
// Postings strictly before the end of the promotional period are free.
func (s *Service) CalculateDealCredits(dealType models.DealType) decimal.Decimal {
	if s.clock.Now().Before(s.pricing.PromotionalPeriodEndsAt) {
		return decimal.Zero
	}
	if dealType == models.DealTypeHot {
		return s.pricing.HotDealCost
	}
	return s.pricing.RegularDealCost
}

// LockAccount takes the balance row lock for the rest of the transaction carried by ctx.
// Callers that insert rows referencing the user before charging take it first, so
// concurrent postings by one supplier queue on the lock instead of deadlocking.
func (s *Service) LockAccount(ctx context.Context, userID string) error {
	const op = "credits.LockAccount"
	if _, err := s.repo.LockUserBalance(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChargeDealCredits deducts the posting cost of a deal. It joins the transaction
// carried by ctx when there is one. A zero charge writes nothing.
func (s *Service) ChargeDealCredits(ctx context.Context, userID string, credits decimal.Decimal, dealID string, dealType models.DealType) error {
	const op = "credits.ChargeDealCredits"
	if credits.IsZero() {
		return nil
	}
	if credits.IsNegative() {
		return fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	label := "Regular"
	if dealType == models.DealTypeHot {
		label = "Hot"
	}
	tx := &models.CreditTransaction{
		UserID:      userID,
		Amount:      credits.Neg(),
		Type:        models.CreditCharge,
		DealID:      &dealID,
		Description: fmt.Sprintf("%s deal posting: %s", label, dealID),
	}
	if _, err := s.apply(ctx, tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PurchaseCredits adds purchased credits for a completed payment.
func (s *Service) PurchaseCredits(ctx context.Context, userID string, credits decimal.Decimal, paymentID string) (decimal.Decimal, error) {
	const op = "credits.PurchaseCredits"
	if !credits.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	tx := &models.CreditTransaction{
		UserID:      userID,
		Amount:      credits,
		Type:        models.CreditPurchase,
		PaymentID:   &paymentID,
		Description: fmt.Sprintf("Purchased %s credits", credits.StringFixed(2)),
	}
	balance, err := s.apply(ctx, tx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("credits purchased", slog.String("user_id", userID), slog.String("credits", credits.String()))
	return balance, nil
}

// RefundCredits returns credits to a user.
func (s *Service) RefundCredits(ctx context.Context, userID string, credits decimal.Decimal, dealID *string, reason string) (decimal.Decimal, error) {
	const op = "credits.RefundCredits"
	if !credits.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	desc := "Refund"
	if reason != "" {
		desc = "Refund: " + reason
	}
	tx := &models.CreditTransaction{
		UserID:      userID,
		Amount:      credits,
		Type:        models.CreditRefund,
		DealID:      dealID,
		Description: desc,
	}
	balance, err := s.apply(ctx, tx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("credits refunded", slog.String("user_id", userID), slog.String("credits", credits.String()))
	return balance, nil
}

// Balance returns the current balance.
func (s *Service) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	balance, err := s.repo.GetUserBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

// ListTransactions returns the user's ledger, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	return s.repo.ListCreditTransactions(ctx, userID, limit, offset)
}

// apply locks the balance, checks the result stays non-negative, writes it and appends tx.
func (s *Service) apply(ctx context.Context, tx *models.CreditTransaction) (decimal.Decimal, error) {
	var next decimal.Decimal
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		balance, err := s.repo.LockUserBalance(ctx, tx.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		next = balance.Add(tx.Amount)
		if next.IsNegative() {
			return ErrInsufficientCredits
		}

		now := s.clock.Now()
		if err := s.repo.UpdateUserBalance(ctx, tx.UserID, next, now); err != nil {
			return err
		}
		tx.ID = uuid.NewString()
		tx.CreatedAt = now
		return s.repo.InsertCreditTransaction(ctx, tx)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return next, nil
}
