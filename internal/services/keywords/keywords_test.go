package keywords

import (
	"context"
	"fmt"
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

func (m *RepoMock) CreateKeyword(ctx context.Context, k *models.Keyword) error {
	return m.Called(ctx, k).Error(0)
}

func (m *RepoMock) DeleteKeyword(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *RepoMock) ListKeywords(ctx context.Context, userID string) ([]*models.Keyword, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Keyword), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdd(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		term     string
		repoErr  error
		wantTerm string
		wantErr  error
	}{
		{name: "normalises", term: "  LapTop ", wantTerm: "laptop"},
		{name: "too short", term: " a ", wantErr: ErrInvalidKeyword},
		{name: "duplicate", term: "chair", repoErr: fmt.Errorf("storage.CreateKeyword: %w", repository.ErrDuplicate), wantErr: ErrKeywordExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewKeywordService(repo, clock.NewFixed(now), newNoopLogger())
			repo.On("CreateKeyword", mock.Anything, mock.Anything).Return(tt.repoErr)

			k, err := svc.Add(context.Background(), "u1", tt.term)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTerm, k.Keyword)
			assert.Equal(t, now, k.CreatedAt)
		})
	}
}

func TestRemove_ForeignKeyword(t *testing.T) {
	repo := new(RepoMock)
	svc := NewKeywordService(repo, clock.Real{}, newNoopLogger())
	repo.On("DeleteKeyword", mock.Anything, "u1", "k2").Return(repository.ErrNotFound)

	assert.ErrorIs(t, svc.Remove(context.Background(), "u1", "k2"), ErrKeywordNotFound)
}
