package deals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/credits"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/notifications"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

const dealTTL = 30 * 24 * time.Hour

type fixture struct {
	repo     *RepoMock
	ledger   *LedgerMock
	notifier *NotifierMock
	cache    *CacheMock
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(RepoMock),
		ledger:   new(LedgerMock),
		notifier: new(NotifierMock),
		cache:    new(CacheMock),
	}
	f.svc = NewDealService(f.repo, f.ledger, f.notifier, f.cache, clock.NewFixed(now), dealTTL, time.Minute, newNoopLogger())
	return f
}

func validRequest() models.CreateDealRequest {
	return models.CreateDealRequest{
		Title:       "Ergonomic office chairs",
		Description: "Bulk lot of 50",
		Category:    "furniture",
		Price:       decimal.RequireFromString("1499.995"),
		DealType:    models.DealTypeRegular,
		Keywords:    []string{" Chair ", "office", "chair"},
	}
}

func TestCreate_ChargesFansOutAndPublishesAfterCommit(t *testing.T) {
	f := newFixture()
	cost := decimal.NewFromInt(2)
	matches := []notifications.Match{{Notification: &models.Notification{ID: "n1"}}}

	f.ledger.On("LockAccount", mock.Anything, "supplier-1").Return(nil)
	f.ledger.On("CalculateDealCredits", models.DealTypeRegular).Return(cost)
	f.repo.On("CreateDeal", mock.Anything, mock.MatchedBy(func(d *models.Deal) bool {
		return d.Status == models.DealStatusActive &&
			d.ExpiresAt.Equal(now.Add(dealTTL)) &&
			d.CreditsCost.Equal(cost) &&
			d.Price.Equal(decimal.RequireFromString("1500")) &&
			assert.ObjectsAreEqual([]string{"chair", "office"}, d.Keywords)
	})).Return(nil)
	f.ledger.On("ChargeDealCredits", mock.Anything, "supplier-1", cost, mock.AnythingOfType("string"), models.DealTypeRegular).Return(nil)
	f.notifier.On("FanOut", mock.Anything, mock.Anything).Return(matches, nil)
	f.notifier.On("Publish", mock.Anything, matches).Return()
	f.cache.On("Set", mock.Anything, mock.Anything, time.Minute).Return(nil)

	deal, err := f.svc.Create(context.Background(), "supplier-1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "supplier-1", deal.SupplierID)
	assert.NotEmpty(t, deal.ID)

	f.repo.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCreate_InsufficientCreditsRollsBack(t *testing.T) {
	f := newFixture()
	cost := decimal.NewFromInt(10)
	req := validRequest()
	req.DealType = models.DealTypeHot

	f.ledger.On("LockAccount", mock.Anything, "supplier-1").Return(nil)
	f.ledger.On("CalculateDealCredits", models.DealTypeHot).Return(cost)
	f.repo.On("CreateDeal", mock.Anything, mock.Anything).Return(nil)
	f.ledger.On("ChargeDealCredits", mock.Anything, "supplier-1", cost, mock.Anything, models.DealTypeHot).
		Return(credits.ErrInsufficientCredits)

	_, err := f.svc.Create(context.Background(), "supplier-1", req)
	require.ErrorIs(t, err, credits.ErrInsufficientCredits)

	f.notifier.AssertNotCalled(t, "FanOut", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_LocksBalanceBeforeInsert(t *testing.T) {
	f := newFixture()
	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { calls = append(calls, name) }
	}

	f.ledger.On("LockAccount", mock.Anything, "supplier-1").Run(record("lock")).Return(nil)
	f.ledger.On("CalculateDealCredits", mock.Anything).Return(decimal.NewFromInt(2))
	f.repo.On("CreateDeal", mock.Anything, mock.Anything).Run(record("insert")).Return(nil)
	f.ledger.On("ChargeDealCredits", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(record("charge")).Return(nil)
	f.notifier.On("FanOut", mock.Anything, mock.Anything).Return(nil, nil)
	f.notifier.On("Publish", mock.Anything, mock.Anything).Return()
	f.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), "supplier-1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "insert", "charge"}, calls)
}

func TestCreate_UnknownSupplier(t *testing.T) {
	f := newFixture()
	f.ledger.On("LockAccount", mock.Anything, "ghost").Return(credits.ErrUserNotFound)

	_, err := f.svc.Create(context.Background(), "ghost", validRequest())
	require.ErrorIs(t, err, credits.ErrUserNotFound)
	f.repo.AssertNotCalled(t, "CreateDeal", mock.Anything, mock.Anything)
}

func TestCreate_Validation(t *testing.T) {
	past := now.Add(-time.Hour)
	negative := decimal.NewFromInt(-5)
	tests := []struct {
		name    string
		mutate  func(r *models.CreateDealRequest)
		wantErr error
	}{
		{name: "zero price", mutate: func(r *models.CreateDealRequest) { r.Price = decimal.Zero }, wantErr: ErrInvalidPrice},
		{name: "negative original price", mutate: func(r *models.CreateDealRequest) { r.OriginalPrice = &negative }, wantErr: ErrInvalidPrice},
		{name: "expiry in past", mutate: func(r *models.CreateDealRequest) { r.ExpiresAt = &past }, wantErr: ErrInvalidExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.mutate(&req)
			_, err := f.svc.Create(context.Background(), "supplier-1", req)
			assert.ErrorIs(t, err, tt.wantErr)
			f.repo.AssertNotCalled(t, "CreateDeal", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_ExplicitExpiry(t *testing.T) {
	f := newFixture()
	expiry := now.Add(48 * time.Hour)
	req := validRequest()
	req.ExpiresAt = &expiry

	f.ledger.On("LockAccount", mock.Anything, "supplier-1").Return(nil)
	f.ledger.On("CalculateDealCredits", mock.Anything).Return(decimal.Zero)
	f.repo.On("CreateDeal", mock.Anything, mock.MatchedBy(func(d *models.Deal) bool {
		return d.ExpiresAt.Equal(expiry)
	})).Return(nil)
	f.ledger.On("ChargeDealCredits", mock.Anything, mock.Anything, decimal.Zero, mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("FanOut", mock.Anything, mock.Anything).Return(nil, nil)
	f.notifier.On("Publish", mock.Anything, mock.Anything).Return()
	f.cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	_, err := f.svc.Create(context.Background(), "supplier-1", req)
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestGet(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.repo.On("IncrementDealViewCount", mock.Anything, "missing").Return(repository.ErrNotFound)
		_, err := f.svc.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrDealNotFound)
	})

	t.Run("cache miss loads and caches", func(t *testing.T) {
		f := newFixture()
		deal := &models.Deal{ID: "d1", ViewCount: 3}
		f.repo.On("IncrementDealViewCount", mock.Anything, "d1").Return(nil)
		f.cache.On("Get", "deal:d1", mock.Anything).Return(false, nil)
		f.repo.On("GetDeal", mock.Anything, "d1").Return(deal, nil)
		f.cache.On("Set", "deal:d1", deal, time.Minute).Return(nil)

		got, err := f.svc.Get(context.Background(), "d1")
		require.NoError(t, err)
		assert.Equal(t, deal, got)
		f.cache.AssertExpectations(t)
	})

	t.Run("cache hit refreshes status and counters", func(t *testing.T) {
		f := newFixture()
		stats := models.DealStats{
			Status:       models.DealStatusExpired,
			ExpiresAt:    now.Add(-time.Minute),
			ViewCount:    42,
			InquiryCount: 7,
			UpdatedAt:    now,
		}
		f.repo.On("IncrementDealViewCount", mock.Anything, "d1").Return(nil)
		f.cache.On("Get", "deal:d1", mock.Anything).Run(func(args mock.Arguments) {
			*args.Get(1).(*models.Deal) = models.Deal{ID: "d1", Title: "Chairs", Status: models.DealStatusActive, ViewCount: 1}
		}).Return(true, nil)
		f.repo.On("GetDealStats", mock.Anything, "d1").Return(stats, nil)

		got, err := f.svc.Get(context.Background(), "d1")
		require.NoError(t, err)
		assert.Equal(t, "Chairs", got.Title)
		assert.Equal(t, models.DealStatusExpired, got.Status)
		assert.Equal(t, 42, got.ViewCount)
		assert.Equal(t, 7, got.InquiryCount)
		f.repo.AssertNotCalled(t, "GetDeal", mock.Anything, mock.Anything)
	})
}

func TestUpdate_NotOwner(t *testing.T) {
	f := newFixture()
	f.repo.On("GetDealForUpdate", mock.Anything, "d1").Return(&models.Deal{ID: "d1", SupplierID: "other"}, nil)

	title := "New"
	_, err := f.svc.Update(context.Background(), "supplier-1", "d1", models.DealPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotOwner)
	f.repo.AssertNotCalled(t, "UpdateDeal", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ReplacesKeywords(t *testing.T) {
	f := newFixture()
	f.repo.On("GetDealForUpdate", mock.Anything, "d1").Return(&models.Deal{ID: "d1", SupplierID: "supplier-1", Keywords: []string{"old"}}, nil)
	f.repo.On("UpdateDeal", mock.Anything, mock.Anything, []string{"desk"}).Return(nil)
	f.cache.On("Invalidate", "deal:d1").Return(nil)

	deal, err := f.svc.Update(context.Background(), "supplier-1", "d1", models.DealPatch{Keywords: []string{"DESK"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"desk"}, deal.Keywords)
	f.cache.AssertExpectations(t)
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		name    string
		deal    models.Deal
		target  models.DealStatus
		wantErr error
		updates bool
	}{
		{
			name:    "pause active",
			deal:    models.Deal{Status: models.DealStatusActive, ExpiresAt: now.Add(time.Hour)},
			target:  models.DealStatusPaused,
			updates: true,
		},
		{
			name:    "resume paused",
			deal:    models.Deal{Status: models.DealStatusPaused, ExpiresAt: now.Add(time.Hour)},
			target:  models.DealStatusActive,
			updates: true,
		},
		{
			name:    "resume expired is rejected",
			deal:    models.Deal{Status: models.DealStatusExpired, ExpiresAt: now.Add(-time.Hour)},
			target:  models.DealStatusActive,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "paused past expiry is rejected",
			deal:    models.Deal{Status: models.DealStatusPaused, ExpiresAt: now},
			target:  models.DealStatusActive,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "expired is not a target",
			deal:    models.Deal{Status: models.DealStatusActive, ExpiresAt: now.Add(time.Hour)},
			target:  models.DealStatusExpired,
			wantErr: ErrInvalidTransition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			deal := tt.deal
			deal.ID = "d1"
			deal.SupplierID = "supplier-1"
			f.repo.On("GetDealForUpdate", mock.Anything, "d1").Return(&deal, nil)
			f.repo.On("UpdateDealStatus", mock.Anything, "d1", tt.target, deal.ExpiresAt, mock.Anything, now).Return(nil)
			f.cache.On("Invalidate", "deal:d1").Return(nil)

			got, err := f.svc.SetStatus(context.Background(), "supplier-1", "d1", tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.repo.AssertNotCalled(t, "UpdateDealStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, got.Status)
			if tt.updates {
				f.repo.AssertCalled(t, "UpdateDealStatus", mock.Anything, "d1", tt.target, deal.ExpiresAt, mock.Anything, now)
			}
		})
	}
}

func TestReactivate(t *testing.T) {
	t.Run("live deal is a no-op", func(t *testing.T) {
		f := newFixture()
		deal := &models.Deal{ID: "d1", SupplierID: "supplier-1", Status: models.DealStatusActive, ExpiresAt: now.Add(time.Hour)}
		f.ledger.On("LockAccount", mock.Anything, "supplier-1").Return(nil)
		f.repo.On("GetDealForUpdate", mock.Anything, "d1").Return(deal, nil)

		got, err := f.svc.Reactivate(context.Background(), "supplier-1", "d1")
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Hour), got.ExpiresAt)
		f.ledger.AssertNotCalled(t, "ChargeDealCredits", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired deal is charged and extended", func(t *testing.T) {
		f := newFixture()
		cost := decimal.NewFromInt(10)
		deal := &models.Deal{ID: "d1", SupplierID: "supplier-1", DealType: models.DealTypeHot, Status: models.DealStatusExpired, ExpiresAt: now.Add(-time.Hour)}
		f.ledger.On("LockAccount", mock.Anything, "supplier-1").Return(nil)
		f.repo.On("GetDealForUpdate", mock.Anything, "d1").Return(deal, nil)
		f.ledger.On("CalculateDealCredits", models.DealTypeHot).Return(cost)
		f.repo.On("UpdateDealStatus", mock.Anything, "d1", models.DealStatusActive, now.Add(dealTTL), cost, now).Return(nil)
		f.ledger.On("ChargeDealCredits", mock.Anything, "supplier-1", cost, "d1", models.DealTypeHot).Return(nil)
		f.cache.On("Invalidate", "deal:d1").Return(nil)

		got, err := f.svc.Reactivate(context.Background(), "supplier-1", "d1")
		require.NoError(t, err)
		assert.Equal(t, models.DealStatusActive, got.Status)
		assert.Equal(t, now.Add(dealTTL), got.ExpiresAt)
		f.ledger.AssertExpectations(t)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		f := newFixture()
		deal := &models.Deal{ID: "d1", SupplierID: "supplier-1", DealType: models.DealTypeRegular, Status: models.DealStatusPaused, ExpiresAt: now.Add(time.Hour)}
		f.ledger.On("LockAccount", mock.Anything, "supplier-1").Return(nil)
		f.repo.On("GetDealForUpdate", mock.Anything, "d1").Return(deal, nil)
		f.ledger.On("CalculateDealCredits", models.DealTypeRegular).Return(decimal.NewFromInt(2))
		f.repo.On("UpdateDealStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.ledger.On("ChargeDealCredits", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(credits.ErrInsufficientCredits)

		_, err := f.svc.Reactivate(context.Background(), "supplier-1", "d1")
		assert.ErrorIs(t, err, credits.ErrInsufficientCredits)
		f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}

func TestExpireDue(t *testing.T) {
	f := newFixture()
	f.repo.On("ExpireDueDeals", mock.Anything, now).Return(int64(3), nil)

	n, err := f.svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
