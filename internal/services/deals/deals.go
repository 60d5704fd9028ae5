// Package deals implements posting, editing, pausing, reactivating and expiring deals.
package deals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/cache"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/metrics"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/notifications"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrDealNotFound      = errors.New("deal not found")
	ErrNotOwner          = errors.New("deal belongs to another supplier")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInvalidExpiry     = errors.New("expiry must be in the future")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Repository is the deal storage.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateDeal(ctx context.Context, d *models.Deal) error
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	GetDealForUpdate(ctx context.Context, id string) (*models.Deal, error)
	GetDealStats(ctx context.Context, id string) (models.DealStats, error)
	ListDeals(ctx context.Context, filter models.DealFilter, now time.Time) ([]*models.Deal, error)
	ListSupplierDeals(ctx context.Context, supplierID string, limit, offset int) ([]*models.Deal, error)
	UpdateDeal(ctx context.Context, d *models.Deal, keywords []string) error
	UpdateDealStatus(ctx context.Context, id string, status models.DealStatus, expiresAt time.Time, creditsCost decimal.Decimal, now time.Time) error
	IncrementDealViewCount(ctx context.Context, id string) error
	ExpireDueDeals(ctx context.Context, now time.Time) (int64, error)
}

// Ledger prices and charges deal postings.
type Ledger interface {
	LockAccount(ctx context.Context, userID string) error
	CalculateDealCredits(dealType models.DealType) decimal.Decimal
	ChargeDealCredits(ctx context.Context, userID string, credits decimal.Decimal, dealID string, dealType models.DealType) error
}

// Notifier fans out keyword matches inside the creating transaction and publishes them afterwards.
type Notifier interface {
	FanOut(ctx context.Context, deal *models.Deal) ([]notifications.Match, error)
	Publish(deal *models.Deal, matches []notifications.Match)
}

// Cache describes the deal read cache.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service implements the deal lifecycle.
type Service struct {
	repo     Repository
	ledger   Ledger
	notifier Notifier
	cache    Cache
	clock    clock.Clock
	dealTTL  time.Duration
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewDealService creates a deal service. dealTTL is the default lifetime of a posting.
func NewDealService(repo Repository, ledger Ledger, notifier Notifier, cache Cache, clk clock.Clock,
	dealTTL, cacheTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledger,
		notifier: notifier,
		cache:    cache,
		clock:    clk,
		dealTTL:  dealTTL,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Create posts a deal. The insert, the credit charge and the notification fan-out
// commit together or not at all.
func (s *Service) Create(ctx context.Context, supplierID string, req models.CreateDealRequest) (*models.Deal, error) {
	const op = "deals.Create"
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if req.OriginalPrice != nil && !req.OriginalPrice.IsPositive() {
		return nil, ErrInvalidPrice
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.dealTTL)
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(now) {
			return nil, ErrInvalidExpiry
		}
		expiresAt = req.ExpiresAt.UTC()
	}

	deal := &models.Deal{
		ID:          uuid.NewString(),
		SupplierID:  supplierID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price.Round(2),
		DealType:    req.DealType,
		Status:      models.DealStatusActive,
		ExpiresAt:   expiresAt,
		Keywords:    models.NormalizeKeywords(req.Keywords),
		ImageURL:    req.ImageURL,
		MinOrder:    req.MinOrder,
		Location:    req.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.OriginalPrice != nil {
		deal.OriginalPrice = decimal.NewNullDecimal(req.OriginalPrice.Round(2))
	}

	var matches []notifications.Match
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		// The deal row references the supplier, so the balance lock comes first.
		if err := s.ledger.LockAccount(ctx, supplierID); err != nil {
			return err
		}
		deal.CreditsCost = s.ledger.CalculateDealCredits(deal.DealType)
		if err := s.repo.CreateDeal(ctx, deal); err != nil {
			return err
		}
		if err := s.ledger.ChargeDealCredits(ctx, supplierID, deal.CreditsCost, deal.ID, deal.DealType); err != nil {
			return err
		}
		var err error
		matches, err = s.notifier.FanOut(ctx, deal)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("deal created", slog.String("deal_id", deal.ID), slog.String("supplier_id", supplierID),
		slog.String("type", string(deal.DealType)), slog.String("credits", deal.CreditsCost.String()),
		slog.Int("notified", len(matches)))

	metrics.DealsCreated.WithLabelValues(string(deal.DealType)).Inc()
	metrics.CreditsCharged.Add(deal.CreditsCost.InexactFloat64())
	s.notifier.Publish(deal, matches)
	s.cacheDeal(deal)
	return deal, nil
}

// Get returns a deal and counts the view. Cached deals get their status and counters
// refreshed from storage.
func (s *Service) Get(ctx context.Context, id string) (*models.Deal, error) {
	if err := s.repo.IncrementDealViewCount(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}

	var cached models.Deal
	found, err := s.cache.Get(cache.DealKey(id), &cached)
	if err != nil {
		s.log.Warn("failed to read deal from cache", slog.String("deal_id", id), sl.Err(err))
	}
	if found {
		// Status and counters change on expiry and inquiries without invalidating the entry.
		stats, err := s.repo.GetDealStats(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrDealNotFound
			}
			return nil, err
		}
		cached.ApplyStats(stats)
		return &cached, nil
	}

	deal, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	s.cacheDeal(deal)
	return deal, nil
}

// List returns live deals, hot first and newest first.
func (s *Service) List(ctx context.Context, filter models.DealFilter) ([]*models.Deal, error) {
	return s.repo.ListDeals(ctx, filter, s.clock.Now())
}

// ListBySupplier returns all of a supplier's deals in any status.
func (s *Service) ListBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*models.Deal, error) {
	return s.repo.ListSupplierDeals(ctx, supplierID, limit, offset)
}

// Update applies a partial edit of a deal owned by supplierID.
func (s *Service) Update(ctx context.Context, supplierID, id string, patch models.DealPatch) (*models.Deal, error) {
	const op = "deals.Update"
	if patch.Price != nil && !patch.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if patch.OriginalPrice != nil && !patch.OriginalPrice.IsPositive() {
		return nil, ErrInvalidPrice
	}

	var deal *models.Deal
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		deal, err = s.lockOwned(ctx, supplierID, id)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			deal.Title = *patch.Title
		}
		if patch.Description != nil {
			deal.Description = *patch.Description
		}
		if patch.Category != nil {
			deal.Category = *patch.Category
		}
		if patch.Price != nil {
			deal.Price = patch.Price.Round(2)
		}
		if patch.OriginalPrice != nil {
			deal.OriginalPrice = decimal.NewNullDecimal(patch.OriginalPrice.Round(2))
		}
		if patch.ImageURL != nil {
			deal.ImageURL = *patch.ImageURL
		}
		if patch.MinOrder != nil {
			deal.MinOrder = *patch.MinOrder
		}
		if patch.Location != nil {
			deal.Location = *patch.Location
		}
		var keywords []string
		if patch.Keywords != nil {
			keywords = models.NormalizeKeywords(patch.Keywords)
			deal.Keywords = keywords
		}
		deal.UpdatedAt = s.clock.Now()
		return s.repo.UpdateDeal(ctx, deal, keywords)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(id)
	return deal, nil
}

// SetStatus pauses an active deal or resumes a paused one that has not yet expired.
func (s *Service) SetStatus(ctx context.Context, supplierID, id string, status models.DealStatus) (*models.Deal, error) {
	const op = "deals.SetStatus"
	if status != models.DealStatusActive && status != models.DealStatusPaused {
		return nil, ErrInvalidTransition
	}

	var deal *models.Deal
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		deal, err = s.lockOwned(ctx, supplierID, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if deal.Status == models.DealStatusExpired || !now.Before(deal.ExpiresAt) {
			return fmt.Errorf("%w: expired deals must be reactivated", ErrInvalidTransition)
		}
		if deal.Status == status {
			return nil
		}
		deal.Status = status
		deal.UpdatedAt = now
		return s.repo.UpdateDealStatus(ctx, id, status, deal.ExpiresAt, deal.CreditsCost, now)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("deal status changed", slog.String("deal_id", id), slog.String("status", string(status)))
	s.invalidate(id)
	return deal, nil
}

// Reactivate puts an expired or paused deal back on the market for another full term,
// charging the current posting cost. A deal that is already live is returned unchanged.
func (s *Service) Reactivate(ctx context.Context, supplierID, id string) (*models.Deal, error) {
	const op = "deals.Reactivate"

	var (
		deal    *models.Deal
		charged bool
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.LockAccount(ctx, supplierID); err != nil {
			return err
		}
		var err error
		deal, err = s.lockOwned(ctx, supplierID, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if deal.IsLive(now) {
			return nil
		}

		cost := s.ledger.CalculateDealCredits(deal.DealType)
		deal.Status = models.DealStatusActive
		deal.ExpiresAt = now.Add(s.dealTTL)
		deal.CreditsCost = cost
		deal.UpdatedAt = now
		if err := s.repo.UpdateDealStatus(ctx, id, deal.Status, deal.ExpiresAt, cost, now); err != nil {
			return err
		}
		charged = true
		return s.ledger.ChargeDealCredits(ctx, supplierID, cost, id, deal.DealType)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if charged {
		s.log.Info("deal reactivated", slog.String("deal_id", id), slog.String("credits", deal.CreditsCost.String()))
		metrics.CreditsCharged.Add(deal.CreditsCost.InexactFloat64())
		s.invalidate(id)
	}
	return deal, nil
}

// ExpireDue marks every active deal past its expiry as expired.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireDueDeals(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.DealsExpired.Add(float64(n))
		s.log.Info("expired deals", slog.Int64("count", n))
	}
	return n, nil
}

func (s *Service) lockOwned(ctx context.Context, supplierID, id string) (*models.Deal, error) {
	deal, err := s.repo.GetDealForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	if deal.SupplierID != supplierID {
		return nil, ErrNotOwner
	}
	return deal, nil
}

func (s *Service) cacheDeal(deal *models.Deal) {
	if err := s.cache.Set(cache.DealKey(deal.ID), deal, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache deal", slog.String("deal_id", deal.ID), sl.Err(err))
	}
}

func (s *Service) invalidate(id string) {
	if err := s.cache.Invalidate(cache.DealKey(id)); err != nil {
		s.log.Warn("failed to invalidate deal cache", slog.String("deal_id", id), sl.Err(err))
	}
}
