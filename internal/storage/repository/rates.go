package repository

import (
	"context"
	"fmt"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// ReplaceRates swaps a supplier's whole price list. It must be called through WithTx.
func (s *Storage) ReplaceRates(ctx context.Context, supplierID string, entries []*models.RateEntry) error {
	const op = "storage.ReplaceRates"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.exec(ctx, `DELETE FROM rate_entries WHERE supplier_id = ?`, supplierID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(entries) == 0 {
		return nil
	}

	q := `INSERT INTO rate_entries (id, supplier_id, item, unit, rate, category, created_at) VALUES `
	args := make([]any, 0, len(entries)*7)
	for i, e := range entries {
		if i > 0 {
			q += `, `
		}
		q += `(?, ?, ?, ?, ?, ?, ?)`
		args = append(args, e.ID, supplierID, e.Item, nullString(e.Unit), e.Rate, nullString(e.Category), e.CreatedAt)
	}
	if _, err := s.exec(ctx, q, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListRates returns a supplier's price list ordered by category and item.
func (s *Storage) ListRates(ctx context.Context, supplierID string) ([]*models.RateEntry, error) {
	const op = "storage.ListRates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.query(ctx, `SELECT id, supplier_id, item, COALESCE(unit, ''), rate, COALESCE(category, ''), created_at
		FROM rate_entries WHERE supplier_id = ? ORDER BY category, item`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.RateEntry, 0)
	for rows.Next() {
		var e models.RateEntry
		if err := rows.Scan(&e.ID, &e.SupplierID, &e.Item, &e.Unit, &e.Rate, &e.Category, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
