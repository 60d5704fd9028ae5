package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

// FindKeywordRecipients returns each user, other than excludeUserID, holding at least one
// keyword equal to a keyword of the deal. Every user appears once.
func (s *Storage) FindKeywordRecipients(ctx context.Context, dealID, excludeUserID string) ([]models.Recipient, error) {
	const op = "storage.FindKeywordRecipients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.query(ctx, `SELECT DISTINCT u.id, u.email, u.first_name, u.email_notifications
		FROM keywords k
		JOIN deal_keywords dk ON dk.keyword = k.keyword
		JOIN users u ON u.id = k.user_id
		WHERE dk.deal_id = ? AND k.user_id <> ?
		ORDER BY u.id`, dealID, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Recipient, 0)
	for rows.Next() {
		var r models.Recipient
		if err := rows.Scan(&r.UserID, &r.Email, &r.FirstName, &r.EmailNotifications); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// notificationBatch bounds the rows per insert statement well below the 65535
// placeholder limit of both backends.
const notificationBatch = 500

// InsertNotifications stores notifications, skipping any (user, deal) pair that already has one.
// Large fan-outs are written in batches on the connection or transaction carried by ctx.
// It returns the number of rows actually written.
func (s *Storage) InsertNotifications(ctx context.Context, items []*models.Notification) (int64, error) {
	const op = "storage.InsertNotifications"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	cols := []string{"id", "user_id", "deal_id", "type", "title", "message", "is_read", "created_at"}
	var written int64
	for start := 0; start < len(items); start += notificationBatch {
		batch := items[start:min(start+notificationBatch, len(items))]
		args := make([]any, 0, len(batch)*len(cols))
		for _, n := range batch {
			args = append(args, n.ID, n.UserID, n.DealID, n.Type, n.Title, n.Message, n.IsRead, n.CreatedAt)
		}
		res, err := s.exec(ctx, s.insertIgnore("notifications", cols, len(batch)), args...)
		if err != nil {
			return written, fmt.Errorf("%s: %w", op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return written, fmt.Errorf("%s: %w", op, err)
		}
		written += n
	}
	return written, nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *Storage) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := `SELECT id, user_id, deal_id, type, title, message, is_read, created_at
		FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		q += ` AND is_read = ?`
		args = append(args, false)
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

	result := make([]*models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.DealID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		n.CreatedAt = n.CreatedAt.UTC()
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUnreadNotifications returns how many notifications the user has not read.
func (s *Storage) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountUnreadNotifications"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`, userID, false).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Storage) MarkNotificationRead(ctx context.Context, userID, id string) error {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`, true, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of the user as read.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	const op = "storage.MarkAllNotificationsRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`, true, userID, false)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// DeleteNotificationsBefore purges read notifications older than cutoff.
func (s *Storage) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.DeleteNotificationsBefore"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `DELETE FROM notifications WHERE is_read = ? AND created_at < ?`, true, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
