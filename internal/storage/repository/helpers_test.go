package repository

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/migrations"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// setupTestDatabase starts a container for dialect, applies migrations and returns a Storage.
func setupTestDatabase(t *testing.T, dialect Dialect) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	var (
		dsn       string
		container testcontainers.Container
	)
	switch dialect {
	case Postgres:
		pg, err := postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("bdd"),
			postgres.WithUsername("user"),
			postgres.WithPassword("password"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		require.NoError(t, err)
		container = pg
		dsn, err = pg.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	case MySQL:
		my, err := tcmysql.Run(ctx,
			"mysql:8.0.36",
			tcmysql.WithDatabase("bdd"),
			tcmysql.WithUsername("user"),
			tcmysql.WithPassword("password"),
		)
		require.NoError(t, err)
		container = my
		dsn, err = my.ConnectionString(ctx)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	storage, err := New(string(dialect), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, string(dialect), filepath.Join(root, "migrations", string(dialect))))
	require.NoError(t, CheckDatabaseReady(storage))
	return storage
}

// forEachDialect runs fn as a subtest against both backends.
func forEachDialect(t *testing.T, fn func(t *testing.T, s *Storage)) {
	for _, d := range []Dialect{Postgres, MySQL} {
		t.Run(string(d), func(t *testing.T) {
			fn(t, setupTestDatabase(t, d))
		})
	}
}

// TestDataFactory creates rows through the repository itself.
type TestDataFactory struct {
	storage *Storage
	now     time.Time
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage, now: time.Now().UTC().Truncate(time.Millisecond)}
}

func (f *TestDataFactory) CreateUser(t *testing.T, role models.Role, balance int64) *models.User {
	t.Helper()
	id := uuid.NewString()
	u := &models.User{
		ID:                 id,
		Email:              id[:8] + "@example.co.za",
		PasswordHash:       "hash",
		Role:               role,
		FirstName:          "Thandi",
		LastName:           "Nkosi",
		CreditBalance:      decimal.NewFromInt(balance),
		EmailNotifications: true,
		CreatedAt:          f.now,
		UpdatedAt:          f.now,
	}
	require.NoError(t, f.storage.CreateUser(context.Background(), u))
	return u
}

// CreateBuyers inserts n buyers in multi-row statements and returns their ids.
func (f *TestDataFactory) CreateBuyers(t *testing.T, n int) []string {
	t.Helper()
	cols := strings.Split(strings.Join(strings.Fields(userColumns), ""), ",")
	ids := make([]string, 0, n)
	for start := 0; start < n; start += 1000 {
		size := min(1000, n-start)
		args := make([]any, 0, size*len(cols))
		for i := 0; i < size; i++ {
			id := uuid.NewString()
			ids = append(ids, id)
			args = append(args, id, id+"@example.co.za", "hash", string(models.RoleBuyer), "Thandi", "Nkosi",
				nil, nil, nil, false, decimal.Zero, false, f.now, f.now)
		}
		_, err := f.storage.exec(context.Background(), f.storage.insertIgnore("users", cols, size), args...)
		require.NoError(t, err)
	}
	return ids
}

func (f *TestDataFactory) CreateDeal(t *testing.T, supplierID string, dealType models.DealType, keywords ...string) *models.Deal {
	t.Helper()
	d := &models.Deal{
		ID:          uuid.NewString(),
		SupplierID:  supplierID,
		Title:       "Bulk " + string(dealType) + " deal",
		Description: "Office supplies",
		Category:    "office",
		Price:       decimal.RequireFromString("199.99"),
		DealType:    dealType,
		Status:      models.DealStatusActive,
		ExpiresAt:   f.now.Add(30 * 24 * time.Hour),
		Keywords:    keywords,
		CreditsCost: decimal.NewFromInt(2),
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	require.NoError(t, f.storage.CreateDeal(context.Background(), d))
	return d
}

func (f *TestDataFactory) CreateKeyword(t *testing.T, userID, keyword string) *models.Keyword {
	t.Helper()
	k := &models.Keyword{ID: uuid.NewString(), UserID: userID, Keyword: keyword, CreatedAt: f.now}
	require.NoError(t, f.storage.CreateKeyword(context.Background(), k))
	return k
}

func (f *TestDataFactory) CreateCoupon(t *testing.T, code string, deal *models.Deal, buyerID string, expiresAt time.Time) *models.Coupon {
	t.Helper()
	c := &models.Coupon{
		ID:         uuid.NewString(),
		Code:       code,
		DealID:     deal.ID,
		BuyerID:    buyerID,
		SupplierID: deal.SupplierID,
		ExpiresAt:  expiresAt,
		CreatedAt:  f.now,
	}
	require.NoError(t, f.storage.CreateCoupon(context.Background(), c))
	return c
}

// TestVerification reads state back for assertions.
type TestVerification struct {
	storage *Storage
}

func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

func (v *TestVerification) Balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := v.storage.GetUserBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (v *TestVerification) LedgerSum(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	var sum decimal.NullDecimal
	err := v.storage.queryRow(context.Background(),
		`SELECT SUM(amount) FROM credit_transactions WHERE user_id = ?`, userID).Scan(&sum)
	require.NoError(t, err)
	if !sum.Valid {
		return decimal.Zero
	}
	return sum.Decimal
}

func (v *TestVerification) NotificationCount(t *testing.T, userID string) int {
	t.Helper()
	var n int
	err := v.storage.queryRow(context.Background(),
		`SELECT COUNT(*) FROM notifications WHERE user_id = ?`, userID).Scan(&n)
	require.NoError(t, err)
	return n
}
