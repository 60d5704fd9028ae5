package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const inquiryColumns = `id, deal_id, buyer_id, supplier_id, message, quantity, response, status, created_at, updated_at`

func scanInquiry(row rowScanner) (*models.Inquiry, error) {
	var (
		i        models.Inquiry
		response sql.NullString
		status   string
		quantity sql.NullInt64
	)
	err := row.Scan(&i.ID, &i.DealID, &i.BuyerID, &i.SupplierID, &i.Message, &quantity, &response, &status,
		&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Quantity = int(quantity.Int64)
	i.Response = response.String
	i.Status = models.InquiryStatus(status)
	i.CreatedAt = i.CreatedAt.UTC()
	i.UpdatedAt = i.UpdatedAt.UTC()
	return &i, nil
}

// CreateInquiry stores a new inquiry.
func (s *Storage) CreateInquiry(ctx context.Context, i *models.Inquiry) error {
	const op = "storage.CreateInquiry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO inquiries (`+inquiryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.DealID, i.BuyerID, i.SupplierID, i.Message, i.Quantity, nullString(i.Response), string(i.Status),
		i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetInquiry returns the inquiry with the given id.
func (s *Storage) GetInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	const op = "storage.GetInquiry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	i, err := scanInquiry(s.queryRow(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return i, nil
}

// UpdateInquiry sets status and, when non-empty, the supplier response.
func (s *Storage) UpdateInquiry(ctx context.Context, id string, status models.InquiryStatus, response string, now time.Time) error {
	const op = "storage.UpdateInquiry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := `UPDATE inquiries SET status = ?, updated_at = ?`
	args := []any{string(status), now}
	if response != "" {
		q += `, response = ?`
		args = append(args, response)
	}
	q += ` WHERE id = ?`
	args = append(args, id)

	res, err := s.exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListInquiries returns inquiries sent by a buyer or received by a supplier, newest first.
func (s *Storage) ListInquiries(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Inquiry, error) {
	const op = "storage.ListInquiries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	column := "buyer_id"
	if role == models.RoleSupplier {
		column = "supplier_id"
	}
	limit, offset = pageArgs(limit, offset)
	rows, err := s.query(ctx, `SELECT `+inquiryColumns+` FROM inquiries
		WHERE `+column+` = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Inquiry, 0)
	for rows.Next() {
		i, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
