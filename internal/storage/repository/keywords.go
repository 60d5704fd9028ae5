package repository

import (
	"context"
	"fmt"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// CreateKeyword stores a keyword subscription. A keyword the user already has yields ErrDuplicate.
func (s *Storage) CreateKeyword(ctx context.Context, k *models.Keyword) error {
	const op = "storage.CreateKeyword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO keywords (id, user_id, keyword, created_at) VALUES (?, ?, ?, ?)`,
		k.ID, k.UserID, k.Keyword, k.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteKeyword removes a keyword owned by userID.
func (s *Storage) DeleteKeyword(ctx context.Context, userID, id string) error {
	const op = "storage.DeleteKeyword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `DELETE FROM keywords WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListKeywords returns the user's keywords in alphabetical order.
func (s *Storage) ListKeywords(ctx context.Context, userID string) ([]*models.Keyword, error) {
	const op = "storage.ListKeywords"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.query(ctx, `SELECT id, user_id, keyword, created_at FROM keywords
		WHERE user_id = ? ORDER BY keyword`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Keyword, 0)
	for rows.Next() {
		var k models.Keyword
		if err := rows.Scan(&k.ID, &k.UserID, &k.Keyword, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		k.CreatedAt = k.CreatedAt.UTC()
		result = append(result, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
