package inquiries

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *RepoMock) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deal), args.Error(1)
}

func (m *RepoMock) IncrementDealInquiryCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) CreateInquiry(ctx context.Context, i *models.Inquiry) error {
	return m.Called(ctx, i).Error(0)
}

func (m *RepoMock) GetInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *RepoMock) UpdateInquiry(ctx context.Context, id string, status models.InquiryStatus, response string, now time.Time) error {
	return m.Called(ctx, id, status, response, now).Error(0)
}

func (m *RepoMock) ListInquiries(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Inquiry, error) {
	args := m.Called(ctx, userID, role, limit, offset)
	return args.Get(0).([]*models.Inquiry), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func liveDeal() *models.Deal {
	return &models.Deal{
		ID:         "d1",
		SupplierID: "s1",
		Status:     models.DealStatusActive,
		ExpiresAt:  now.Add(time.Hour),
	}
}

func TestCreate(t *testing.T) {
	repo := new(RepoMock)
	svc := NewInquiryService(repo, clock.NewFixed(now), newNoopLogger())

	var calls []string
	repo.On("GetDeal", mock.Anything, "d1").Return(liveDeal(), nil)
	repo.On("CreateInquiry", mock.Anything, mock.MatchedBy(func(i *models.Inquiry) bool {
		return i.BuyerID == "b1" && i.SupplierID == "s1" && i.Status == models.InquiryPending
	})).Run(func(mock.Arguments) { calls = append(calls, "insert") }).Return(nil)
	repo.On("IncrementDealInquiryCount", mock.Anything, "d1").
		Run(func(mock.Arguments) { calls = append(calls, "increment") }).Return(nil)

	inquiry, err := svc.Create(context.Background(), "b1", models.InquiryRequest{DealID: "d1", Message: "bulk price?", Quantity: 40})
	require.NoError(t, err)
	assert.Equal(t, 40, inquiry.Quantity)
	assert.Equal(t, []string{"increment", "insert"}, calls)
	repo.AssertExpectations(t)
}

func TestCreate_Rejected(t *testing.T) {
	expired := liveDeal()
	expired.ExpiresAt = now

	tests := []struct {
		name    string
		buyerID string
		deal    *models.Deal
		dealErr error
		wantErr error
	}{
		{name: "missing deal", buyerID: "b1", dealErr: repository.ErrNotFound, wantErr: ErrDealNotFound},
		{name: "expired deal", buyerID: "b1", deal: expired, wantErr: ErrDealNotActive},
		{name: "own deal", buyerID: "s1", deal: liveDeal(), wantErr: ErrOwnDeal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewInquiryService(repo, clock.NewFixed(now), newNoopLogger())
			if tt.deal != nil {
				repo.On("GetDeal", mock.Anything, "d1").Return(tt.deal, nil)
			} else {
				repo.On("GetDeal", mock.Anything, "d1").Return(nil, tt.dealErr)
			}

			_, err := svc.Create(context.Background(), tt.buyerID, models.InquiryRequest{DealID: "d1", Message: "hi"})
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "CreateInquiry", mock.Anything, mock.Anything)
		})
	}
}

func TestRespond(t *testing.T) {
	pending := func() *models.Inquiry {
		return &models.Inquiry{ID: "i1", BuyerID: "b1", SupplierID: "s1", Status: models.InquiryPending}
	}

	t.Run("supplier answers", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewInquiryService(repo, clock.NewFixed(now), newNoopLogger())
		repo.On("GetInquiry", mock.Anything, "i1").Return(pending(), nil)
		repo.On("UpdateInquiry", mock.Anything, "i1", models.InquiryResponded, "R450 each", now).Return(nil)

		inquiry, err := svc.Respond(context.Background(), "s1", "i1", "R450 each")
		require.NoError(t, err)
		assert.Equal(t, models.InquiryResponded, inquiry.Status)
	})

	t.Run("buyer cannot answer", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewInquiryService(repo, clock.NewFixed(now), newNoopLogger())
		repo.On("GetInquiry", mock.Anything, "i1").Return(pending(), nil)

		_, err := svc.Respond(context.Background(), "b1", "i1", "x")
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("closed inquiry", func(t *testing.T) {
		repo := new(RepoMock)
		svc := NewInquiryService(repo, clock.NewFixed(now), newNoopLogger())
		closed := pending()
		closed.Status = models.InquiryClosed
		repo.On("GetInquiry", mock.Anything, "i1").Return(closed, nil)

		_, err := svc.Respond(context.Background(), "s1", "i1", "x")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestClose_NotFound(t *testing.T) {
	repo := new(RepoMock)
	svc := NewInquiryService(repo, clock.NewFixed(now), newNoopLogger())
	repo.On("GetInquiry", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	_, err := svc.Close(context.Background(), "b1", "nope")
	assert.ErrorIs(t, err, ErrInquiryNotFound)
}
