package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const paymentColumns = `id, user_id, credits, amount, status, provider_payment_id, created_at, updated_at`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		p          models.Payment
		status     string
		providerID sql.NullString
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Credits, &p.Amount, &status, &providerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = models.PaymentStatus(status)
	p.ProviderPaymentID = providerID.String
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// CreatePayment stores a pending purchase.
func (s *Storage) CreatePayment(ctx context.Context, p *models.Payment) error {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Credits, p.Amount, string(p.Status), nullString(p.ProviderPaymentID), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentForUpdate returns a payment and locks it until the transaction ends.
func (s *Storage) GetPaymentForUpdate(ctx context.Context, id string) (*models.Payment, error) {
	const op = "storage.GetPaymentForUpdate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPayment(s.queryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePaymentStatus records the provider outcome of a payment.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, providerID string, now time.Time) error {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE payments SET status = ?, provider_payment_id = ?, updated_at = ? WHERE id = ?`,
		string(status), nullString(providerID), now, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPayments returns a user's purchases, newest first.
func (s *Storage) ListPayments(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	limit, offset = pageArgs(limit, offset)
	rows, err := s.query(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
