package keywords

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/middlewarectx"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	keywordservice "github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/services/keywords"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Add(ctx context.Context, userID, term string) (*models.Keyword, error) {
	args := m.Called(ctx, userID, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Keyword), args.Error(1)
}

func (m *MockService) Remove(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockService) List(ctx context.Context, userID string) ([]*models.Keyword, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Keyword), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(method, target, body, id string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middlewarectx.WithIdentity(ctx, middlewarectx.Identity{UserID: "b1", Role: models.RoleBuyer}))
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
	}{
		{name: "created", body: `{"keyword":"Steel"}`, expectedStatus: http.StatusCreated},
		{name: "duplicate", body: `{"keyword":"steel"}`, err: keywordservice.ErrKeywordExists, expectedStatus: http.StatusConflict},
		{name: "too short", body: `{"keyword":"s"}`, expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On("Add", mock.Anything, "b1", mock.Anything).Return(nil, tt.err)
			} else {
				svc.On("Add", mock.Anything, "b1", mock.Anything).Return(&models.Keyword{ID: "k1", Keyword: "steel"}, nil)
			}
			h := New(newNoopLogger(), svc)

			rr := httptest.NewRecorder()
			h.Add(rr, newRequest(http.MethodPost, "/api/keywords", tt.body, ""))

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestRemove(t *testing.T) {
	svc := new(MockService)
	svc.On("Remove", mock.Anything, "b1", "k1").Return(nil)
	svc.On("Remove", mock.Anything, "b1", "k2").Return(keywordservice.ErrKeywordNotFound)
	h := New(newNoopLogger(), svc)

	rr := httptest.NewRecorder()
	h.Remove(rr, newRequest(http.MethodDelete, "/api/keywords/k1", "", "k1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.Remove(rr, newRequest(http.MethodDelete, "/api/keywords/k2", "", "k2"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
