package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// InsertCreditTransaction appends a ledger row. Rows are never updated afterwards.
func (s *Storage) InsertCreditTransaction(ctx context.Context, t *models.CreditTransaction) error {
	const op = "storage.InsertCreditTransaction"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO credit_transactions
		(id, user_id, amount, type, deal_id, payment_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Amount, string(t.Type), nullStringPtr(t.DealID), nullStringPtr(t.PaymentID),
		t.Description, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListCreditTransactions returns a user's ledger, newest first.
func (s *Storage) ListCreditTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	const op = "storage.ListCreditTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	limit, offset = pageArgs(limit, offset)
	rows, err := s.query(ctx, `SELECT id, user_id, amount, type, deal_id, payment_id, description, created_at
		FROM credit_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.CreditTransaction, 0)
	for rows.Next() {
		var (
			t               models.CreditTransaction
			txType          string
			dealID, payment sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &txType, &dealID, &payment, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		t.Type = models.CreditTransactionType(txType)
		t.DealID = stringPtr(dealID)
		t.PaymentID = stringPtr(payment)
		t.CreatedAt = t.CreatedAt.UTC()
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
