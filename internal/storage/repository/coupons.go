package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const couponColumns = `id, code, deal_id, buyer_id, supplier_id, is_redeemed, redeemed_at, redemption_location,
	redemption_notes, expires_at, created_at`

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var (
		c               models.Coupon
		redeemedAt      sql.NullTime
		location, notes sql.NullString
	)
	err := row.Scan(&c.ID, &c.Code, &c.DealID, &c.BuyerID, &c.SupplierID, &c.IsRedeemed, &redeemedAt, &location,
		&notes, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.RedeemedAt = timePtr(redeemedAt)
	c.RedemptionLocation = location.String
	c.RedemptionNotes = notes.String
	c.ExpiresAt = c.ExpiresAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// CreateCoupon stores a new coupon. A code collision yields ErrDuplicate.
func (s *Storage) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	const op = "storage.CreateCoupon"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO coupons (`+couponColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Code, c.DealID, c.BuyerID, c.SupplierID, c.IsRedeemed, c.RedeemedAt,
		nullString(c.RedemptionLocation), nullString(c.RedemptionNotes), c.ExpiresAt, c.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetCouponByCode returns the coupon with the given code.
func (s *Storage) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return s.getCoupon(ctx, "storage.GetCouponByCode", code, false)
}

// GetCouponByCodeForUpdate returns the coupon and locks it until the transaction ends.
func (s *Storage) GetCouponByCodeForUpdate(ctx context.Context, code string) (*models.Coupon, error) {
	return s.getCoupon(ctx, "storage.GetCouponByCodeForUpdate", code, true)
}

func (s *Storage) getCoupon(ctx context.Context, op, code string, lock bool) (*models.Coupon, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := `SELECT ` + couponColumns + ` FROM coupons WHERE code = ?`
	if lock {
		q += ` FOR UPDATE`
	}
	c, err := scanCoupon(s.queryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// FindActiveCoupon returns an unredeemed, unexpired coupon the buyer holds for the deal.
func (s *Storage) FindActiveCoupon(ctx context.Context, buyerID, dealID string, now time.Time) (*models.Coupon, error) {
	const op = "storage.FindActiveCoupon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	c, err := scanCoupon(s.queryRow(ctx, `SELECT `+couponColumns+` FROM coupons
		WHERE buyer_id = ? AND deal_id = ? AND is_redeemed = ? AND expires_at > ?
		ORDER BY created_at DESC LIMIT 1`, buyerID, dealID, false, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// MarkCouponRedeemed flips an unredeemed coupon to redeemed. A coupon that is already
// redeemed yields ErrNotFound, so two concurrent redemptions cannot both succeed.
func (s *Storage) MarkCouponRedeemed(ctx context.Context, id string, at time.Time, location, notes string) error {
	const op = "storage.MarkCouponRedeemed"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE coupons SET is_redeemed = ?, redeemed_at = ?, redemption_location = ?,
		redemption_notes = ? WHERE id = ? AND is_redeemed = ?`,
		true, at, nullString(location), nullString(notes), id, false)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InsertRedemptionAttempt appends an audit row.
func (s *Storage) InsertRedemptionAttempt(ctx context.Context, a *models.RedemptionAttempt) error {
	const op = "storage.InsertRedemptionAttempt"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO coupon_redemption_attempts
		(id, coupon_id, supplier_id, success, reason, location, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CouponID, a.SupplierID, a.Success, nullString(a.Reason), nullString(a.Location),
		nullString(a.Notes), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListRedemptionAttempts returns the audit trail of a coupon, oldest first.
func (s *Storage) ListRedemptionAttempts(ctx context.Context, couponID string) ([]*models.RedemptionAttempt, error) {
	const op = "storage.ListRedemptionAttempts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.query(ctx, `SELECT id, coupon_id, supplier_id, success, reason, location, notes, created_at
		FROM coupon_redemption_attempts WHERE coupon_id = ? ORDER BY created_at, id`, couponID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.RedemptionAttempt, 0)
	for rows.Next() {
		var (
			a                       models.RedemptionAttempt
			reason, location, notes sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.CouponID, &a.SupplierID, &a.Success, &reason, &location, &notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Reason = reason.String
		a.Location = location.String
		a.Notes = notes.String
		a.CreatedAt = a.CreatedAt.UTC()
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListCoupons returns coupons held by a buyer or issued against a supplier's deals, newest first.
func (s *Storage) ListCoupons(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Coupon, error) {
	const op = "storage.ListCoupons"
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
	rows, err := s.query(ctx, `SELECT `+couponColumns+` FROM coupons
		WHERE `+column+` = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
