package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const dealRequestColumns = `id, buyer_id, title, description, category, budget, quantity, status, created_at`

func scanDealRequest(row rowScanner) (*models.DealRequest, error) {
	var (
		r        models.DealRequest
		status   string
		quantity sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.BuyerID, &r.Title, &r.Description, &r.Category, &r.Budget, &quantity, &status, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Quantity = int(quantity.Int64)
	r.Status = models.DealRequestStatus(status)
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

// CreateDealRequest stores a buyer request.
func (s *Storage) CreateDealRequest(ctx context.Context, r *models.DealRequest) error {
	const op = "storage.CreateDealRequest"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO deal_requests (`+dealRequestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BuyerID, r.Title, r.Description, r.Category, r.Budget, r.Quantity, string(r.Status), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetDealRequest returns the request with the given id.
func (s *Storage) GetDealRequest(ctx context.Context, id string) (*models.DealRequest, error) {
	const op = "storage.GetDealRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	r, err := scanDealRequest(s.queryRow(ctx, `SELECT `+dealRequestColumns+` FROM deal_requests WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListOpenDealRequests returns open requests, optionally narrowed by category and buyer, newest first.
func (s *Storage) ListOpenDealRequests(ctx context.Context, category, buyerID string, limit, offset int) ([]*models.DealRequest, error) {
	const op = "storage.ListOpenDealRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := `SELECT ` + dealRequestColumns + ` FROM deal_requests WHERE status = ?`
	args := []any{string(models.DealRequestOpen)}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	if buyerID != "" {
		q += ` AND buyer_id = ?`
		args = append(args, buyerID)
	}
	limit, offset = pageArgs(limit, offset)
	q += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.DealRequest, 0)
	for rows.Next() {
		r, err := scanDealRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CloseDealRequest closes a request owned by buyerID.
func (s *Storage) CloseDealRequest(ctx context.Context, buyerID, id string) error {
	const op = "storage.CloseDealRequest"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE deal_requests SET status = ? WHERE id = ? AND buyer_id = ?`,
		string(models.DealRequestClosed), id, buyerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
