package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const dealColumns = `id, supplier_id, title, description, category, price, original_price, deal_type, status,
	expires_at, view_count, inquiry_count, credits_cost, image_url, min_order, location, created_at, updated_at`

func scanDeal(row rowScanner) (*models.Deal, error) {
	var (
		d                  models.Deal
		dealType, status   string
		imageURL, location sql.NullString
		minOrder           sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.SupplierID, &d.Title, &d.Description, &d.Category, &d.Price, &d.OriginalPrice,
		&dealType, &status, &d.ExpiresAt, &d.ViewCount, &d.InquiryCount, &d.CreditsCost, &imageURL, &minOrder,
		&location, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.DealType = models.DealType(dealType)
	d.Status = models.DealStatus(status)
	d.ImageURL = imageURL.String
	d.Location = location.String
	d.MinOrder = int(minOrder.Int64)
	d.ExpiresAt = d.ExpiresAt.UTC()
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	d.Keywords = []string{}
	return &d, nil
}

// CreateDeal inserts a deal together with its keyword set.
func (s *Storage) CreateDeal(ctx context.Context, d *models.Deal) error {
	const op = "storage.CreateDeal"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO deals (`+dealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SupplierID, d.Title, d.Description, d.Category, d.Price, d.OriginalPrice,
		string(d.DealType), string(d.Status), d.ExpiresAt, d.ViewCount, d.InquiryCount, d.CreditsCost,
		nullString(d.ImageURL), d.MinOrder, nullString(d.Location), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.insertDealKeywords(ctx, d.ID, d.Keywords); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) insertDealKeywords(ctx context.Context, dealID string, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	args := make([]any, 0, len(keywords)*2)
	for _, k := range keywords {
		args = append(args, dealID, k)
	}
	_, err := s.exec(ctx, s.insertIgnore("deal_keywords", []string{"deal_id", "keyword"}, len(keywords)), args...)
	return err
}

// GetDeal returns a deal with its keywords.
func (s *Storage) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	return s.getDeal(ctx, "storage.GetDeal", id, false)
}

// GetDealForUpdate returns a deal and locks its row until the transaction ends.
func (s *Storage) GetDealForUpdate(ctx context.Context, id string) (*models.Deal, error) {
	return s.getDeal(ctx, "storage.GetDealForUpdate", id, true)
}

func (s *Storage) getDeal(ctx context.Context, op, id string, lock bool) (*models.Deal, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := `SELECT ` + dealColumns + ` FROM deals WHERE id = ?`
	if lock {
		q += ` FOR UPDATE`
	}
	d, err := scanDeal(s.queryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadKeywords(ctx, []*models.Deal{d}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// ListDeals returns live deals matching filter, hot deals first and newest first within a tier.
func (s *Storage) ListDeals(ctx context.Context, filter models.DealFilter, now time.Time) ([]*models.Deal, error) {
	const op = "storage.ListDeals"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := []string{"status = ?", "expires_at > ?"}
	args := []any{string(models.DealStatusActive), now}
	if filter.Type != "" {
		where = append(where, "deal_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.SupplierID != "" {
		where = append(where, "supplier_id = ?")
		args = append(args, filter.SupplierID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')")
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		args = append(args, pattern, pattern)
	}
	limit, offset := pageArgs(filter.Limit, filter.Offset)
	args = append(args, limit, offset)

	rows, err := s.query(ctx, `SELECT `+dealColumns+` FROM deals
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY CASE WHEN deal_type = 'hot' THEN 0 ELSE 1 END, created_at DESC, id
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	deals, err := collectDeals(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadKeywords(ctx, deals); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return deals, nil
}

// ListSupplierDeals returns every deal of a supplier regardless of status, newest first.
func (s *Storage) ListSupplierDeals(ctx context.Context, supplierID string, limit, offset int) ([]*models.Deal, error) {
	const op = "storage.ListSupplierDeals"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	limit, offset = pageArgs(limit, offset)
	rows, err := s.query(ctx, `SELECT `+dealColumns+` FROM deals
		WHERE supplier_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, supplierID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	deals, err := collectDeals(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadKeywords(ctx, deals); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return deals, nil
}

func collectDeals(rows *sql.Rows) ([]*models.Deal, error) {
	defer func() {
		_ = rows.Close()
	}()
	deals := make([]*models.Deal, 0)
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (s *Storage) loadKeywords(ctx context.Context, deals []*models.Deal) error {
	if len(deals) == 0 {
		return nil
	}
	byID := make(map[string]*models.Deal, len(deals))
	args := make([]any, 0, len(deals))
	for _, d := range deals {
		byID[d.ID] = d
		args = append(args, d.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(deals)), ", ")
	rows, err := s.query(ctx, `SELECT deal_id, keyword FROM deal_keywords
		WHERE deal_id IN (`+placeholders+`) ORDER BY keyword`, args...)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var dealID, keyword string
		if err := rows.Scan(&dealID, &keyword); err != nil {
			return err
		}
		if d, ok := byID[dealID]; ok {
			d.Keywords = append(d.Keywords, keyword)
		}
	}
	return rows.Err()
}

// UpdateDeal writes the editable fields of d and, when keywords is non-nil, replaces the keyword set.
func (s *Storage) UpdateDeal(ctx context.Context, d *models.Deal, keywords []string) error {
	const op = "storage.UpdateDeal"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE deals SET title = ?, description = ?, category = ?, price = ?,
		original_price = ?, image_url = ?, min_order = ?, location = ?, updated_at = ?
		WHERE id = ?`,
		d.Title, d.Description, d.Category, d.Price, d.OriginalPrice, nullString(d.ImageURL), d.MinOrder,
		nullString(d.Location), d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if keywords == nil {
		return nil
	}
	if _, err := s.exec(ctx, `DELETE FROM deal_keywords WHERE deal_id = ?`, d.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.insertDealKeywords(ctx, d.ID, keywords); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateDealStatus sets status and expiry. A charge made on reactivation is recorded in creditsCost.
func (s *Storage) UpdateDealStatus(ctx context.Context, id string, status models.DealStatus, expiresAt time.Time,
	creditsCost decimal.Decimal, now time.Time) error {
	const op = "storage.UpdateDealStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE deals SET status = ?, expires_at = ?, credits_cost = ?, updated_at = ? WHERE id = ?`,
		string(status), expiresAt, creditsCost, now, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE pattern using '!' as the escape character.
// A backslash would need doubling on MySQL only.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetDealStats reads the status, expiry and counters of a deal.
func (s *Storage) GetDealStats(ctx context.Context, id string) (models.DealStats, error) {
	const op = "storage.GetDealStats"
	select {
	case <-ctx.Done():
		return models.DealStats{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		st     models.DealStats
		status string
	)
	err := s.queryRow(ctx, `SELECT status, expires_at, view_count, inquiry_count, updated_at
		FROM deals WHERE id = ?`, id).Scan(&status, &st.ExpiresAt, &st.ViewCount, &st.InquiryCount, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DealStats{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.DealStats{}, fmt.Errorf("%s: %w", op, err)
	}
	st.Status = models.DealStatus(status)
	st.ExpiresAt = st.ExpiresAt.UTC()
	st.UpdatedAt = st.UpdatedAt.UTC()
	return st, nil
}

// IncrementDealViewCount adds one view atomically.
func (s *Storage) IncrementDealViewCount(ctx context.Context, id string) error {
	const op = "storage.IncrementDealViewCount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE deals SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IncrementDealInquiryCount adds one inquiry atomically.
func (s *Storage) IncrementDealInquiryCount(ctx context.Context, id string) error {
	const op = "storage.IncrementDealInquiryCount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE deals SET inquiry_count = inquiry_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ExpireDueDeals moves every active deal whose expiry has passed to expired.
func (s *Storage) ExpireDueDeals(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.ExpireDueDeals"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE deals SET status = ?, updated_at = ? WHERE status = ? AND expires_at <= ?`,
		string(models.DealStatusExpired), now, string(models.DealStatusActive), now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// FindDealsExpiringBetween lists active deals whose expiry falls in [from, to) with their supplier contact.
func (s *Storage) FindDealsExpiringBetween(ctx context.Context, from, to time.Time) ([]models.DealExpiringEvent, error) {
	const op = "storage.FindDealsExpiringBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.query(ctx, `SELECT d.id, d.title, d.supplier_id, u.email, u.first_name, d.expires_at
		FROM deals d
		JOIN users u ON u.id = d.supplier_id
		WHERE d.status = ? AND d.expires_at >= ? AND d.expires_at < ? AND u.email_notifications = ?
		ORDER BY d.expires_at`,
		string(models.DealStatusActive), from, to, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.DealExpiringEvent, 0)
	for rows.Next() {
		var e models.DealExpiringEvent
		if err := rows.Scan(&e.DealID, &e.DealTitle, &e.SupplierID, &e.Email, &e.FirstName, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.ExpiresAt = e.ExpiresAt.UTC()
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
