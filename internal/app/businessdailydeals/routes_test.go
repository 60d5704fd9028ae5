package businessdailydeals

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/auth"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/coupons"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/credits"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/dealrequests"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/deals"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/health"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/inquiries"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/keywords"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/notifications"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/payments"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/rates"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/http/handlers/users"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/jwt"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

type balanceOnly struct{}

func (balanceOnly) Balance(context.Context, string) (decimal.Decimal, error) {
	return decimal.NewFromInt(12), nil
}

func (balanceOnly) ListTransactions(context.Context, string, int, int) ([]*models.CreditTransaction, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (http.Handler, *jwt.MakerImpl) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	h := Handlers{
		Health:        health.New(log, nil),
		Auth:          auth.New(log, nil),
		Users:         users.New(log, nil),
		Deals:         deals.New(log, nil),
		Credits:       credits.New(log, balanceOnly{}),
		Payments:      payments.New(log, nil),
		Inquiries:     inquiries.New(log, nil),
		Coupons:       coupons.New(log, nil),
		Keywords:      keywords.New(log, nil),
		Notifications: notifications.New(log, nil),
		DealRequests:  dealrequests.New(log, nil),
		Rates:         rates.New(log, nil),
	}

	r := chi.NewRouter()
	RegisterRoutes(r, log, h, RouteOptions{Tokens: maker})
	return r, maker
}

func bearer(t *testing.T, maker *jwt.MakerImpl, role models.Role) string {
	t.Helper()
	token, err := maker.GenerateToken("11111111-1111-1111-1111-111111111111", "someone@example.co.za", string(role))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutes_Access(t *testing.T) {
	router, maker := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		role       models.Role
		wantStatus int
	}{
		{name: "health is open", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "balance needs a token", method: http.MethodGet, path: "/api/credits/balance", wantStatus: http.StatusUnauthorized},
		{name: "balance for buyer", method: http.MethodGet, path: "/api/credits/balance", role: models.RoleBuyer, wantStatus: http.StatusOK},
		{name: "buyer cannot post deals", method: http.MethodPost, path: "/api/deals", role: models.RoleBuyer, wantStatus: http.StatusForbidden},
		{name: "buyer cannot buy credits", method: http.MethodPost, path: "/api/credits/purchase", role: models.RoleBuyer, wantStatus: http.StatusForbidden},
		{name: "supplier cannot add keywords", method: http.MethodPost, path: "/api/keywords", role: models.RoleSupplier, wantStatus: http.StatusForbidden},
		{name: "supplier cannot create coupons", method: http.MethodPost, path: "/api/coupons", role: models.RoleSupplier, wantStatus: http.StatusForbidden},
		{name: "supplier cannot refund", method: http.MethodPost, path: "/api/admin/users/x/refund", role: models.RoleSupplier, wantStatus: http.StatusForbidden},
		{name: "upload absent without object store", method: http.MethodPost, path: "/api/upload/image", role: models.RoleSupplier, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, maker, tt.role))
			}
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRoutes_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/deals", nil)
	req.Header.Set("Origin", "https://businessdailydeals.co.za")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
