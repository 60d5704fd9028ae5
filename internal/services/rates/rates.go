// Package rates stores supplier price lists.
package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const MaxRows = 1000

var ErrInvalidRows = errors.New("invalid rate table")

// RowError points at the first offending row of an upload.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrInvalidRows
}

// Repository is the rate table storage.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ReplaceRates(ctx context.Context, supplierID string, entries []*models.RateEntry) error
	ListRates(ctx context.Context, supplierID string) ([]*models.RateEntry, error)
}

type Service struct {
	repo  Repository
	clock clock.Clock
	log   *slog.Logger
}

func NewRateService(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{repo: repo, clock: clk, log: log}
}

// BulkUpload validates every row and replaces the supplier's table atomically.
func (s *Service) BulkUpload(ctx context.Context, supplierID string, rows []models.RateRow) ([]*models.RateEntry, error) {
	const op = "rates.BulkUpload"
	if len(rows) == 0 || len(rows) > MaxRows {
		return nil, &RowError{Row: 0, Reason: fmt.Sprintf("expected 1 to %d rows, got %d", MaxRows, len(rows))}
	}

	now := s.clock.Now()
	entries := make([]*models.RateEntry, 0, len(rows))
	for i, r := range rows {
		item := strings.TrimSpace(r.Item)
		if item == "" {
			return nil, &RowError{Row: i + 1, Reason: "item is required"}
		}
		if !r.Rate.IsPositive() {
			return nil, &RowError{Row: i + 1, Reason: "rate must be positive"}
		}
		entries = append(entries, &models.RateEntry{
			ID:         uuid.NewString(),
			SupplierID: supplierID,
			Item:       item,
			Unit:       strings.TrimSpace(r.Unit),
			Rate:       r.Rate.Round(2),
			Category:   strings.TrimSpace(r.Category),
			CreatedAt:  now,
		})
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		return s.repo.ReplaceRates(ctx, supplierID, entries)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("rate table replaced", slog.String("supplier_id", supplierID), slog.Int("rows", len(entries)))
	return entries, nil
}

// List returns the supplier's current table.
func (s *Service) List(ctx context.Context, supplierID string) ([]*models.RateEntry, error) {
	return s.repo.ListRates(ctx, supplierID)
}
