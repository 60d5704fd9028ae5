package deals

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/notifications"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *RepoMock) CreateDeal(ctx context.Context, d *models.Deal) error {
	return m.Called(ctx, d).Error(0)
}

func (m *RepoMock) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deal), args.Error(1)
}

func (m *RepoMock) GetDealForUpdate(ctx context.Context, id string) (*models.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deal), args.Error(1)
}

func (m *RepoMock) GetDealStats(ctx context.Context, id string) (models.DealStats, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.DealStats), args.Error(1)
}

func (m *RepoMock) ListDeals(ctx context.Context, filter models.DealFilter, now time.Time) ([]*models.Deal, error) {
	args := m.Called(ctx, filter, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deal), args.Error(1)
}

func (m *RepoMock) ListSupplierDeals(ctx context.Context, supplierID string, limit, offset int) ([]*models.Deal, error) {
	args := m.Called(ctx, supplierID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deal), args.Error(1)
}

func (m *RepoMock) UpdateDeal(ctx context.Context, d *models.Deal, keywords []string) error {
	return m.Called(ctx, d, keywords).Error(0)
}

func (m *RepoMock) UpdateDealStatus(ctx context.Context, id string, status models.DealStatus, expiresAt time.Time, creditsCost decimal.Decimal, now time.Time) error {
	return m.Called(ctx, id, status, expiresAt, creditsCost, now).Error(0)
}

func (m *RepoMock) IncrementDealViewCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) ExpireDueDeals(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type LedgerMock struct{ mock.Mock }

func (m *LedgerMock) LockAccount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *LedgerMock) CalculateDealCredits(dealType models.DealType) decimal.Decimal {
	return m.Called(dealType).Get(0).(decimal.Decimal)
}

func (m *LedgerMock) ChargeDealCredits(ctx context.Context, userID string, credits decimal.Decimal, dealID string, dealType models.DealType) error {
	return m.Called(ctx, userID, credits, dealID, dealType).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) FanOut(ctx context.Context, deal *models.Deal) ([]notifications.Match, error) {
	args := m.Called(ctx, deal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notifications.Match), args.Error(1)
}

func (m *NotifierMock) Publish(deal *models.Deal, matches []notifications.Match) {
	m.Called(deal, matches)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
