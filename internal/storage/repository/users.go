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

const userColumns = `id, email, password_hash, role, first_name, last_name, company_name, vat_number,
	phone, is_verified, credit_balance, email_notifications, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                   models.User
		company, vat, phone sql.NullString
		role                string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.FirstName, &u.LastName, &company, &vat,
		&phone, &u.IsVerified, &u.CreditBalance, &u.EmailNotifications, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.CompanyName = company.String
	u.VATNumber = vat.String
	u.Phone = phone.String
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// CreateUser inserts a new account. A taken e-mail yields ErrDuplicate.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role), u.FirstName, u.LastName, nullString(u.CompanyName),
		nullString(u.VATNumber), nullString(u.Phone), u.IsVerified, u.CreditBalance, u.EmailNotifications,
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser returns the user with the given id.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail returns the user registered with email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUserProfile applies the non-nil fields of patch.
func (s *Storage) UpdateUserProfile(ctx context.Context, id string, patch models.ProfilePatch, now time.Time) error {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sets := []string{"updated_at = ?"}
	args := []any{now}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.CompanyName != nil {
		add("company_name", nullString(*patch.CompanyName))
	}
	if patch.VATNumber != nil {
		add("vat_number", nullString(*patch.VATNumber))
	}
	if patch.Phone != nil {
		add("phone", nullString(*patch.Phone))
	}
	if patch.EmailNotifications != nil {
		add("email_notifications", *patch.EmailNotifications)
	}
	args = append(args, id)

	res, err := s.exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSupplierVerified marks a supplier account as verified.
func (s *Storage) SetSupplierVerified(ctx context.Context, id string, now time.Time) error {
	const op = "storage.SetSupplierVerified"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE users SET is_verified = ?, updated_at = ? WHERE id = ? AND role = ?`,
		true, now, id, string(models.RoleSupplier))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LockUserBalance reads the balance and holds a row lock until the surrounding
// transaction ends. It must be called through WithTx.
func (s *Storage) LockUserBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	const op = "storage.LockUserBalance"
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var balance decimal.Decimal
	err := s.queryRow(ctx, `SELECT credit_balance FROM users WHERE id = ? FOR UPDATE`, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// GetUserBalance reads the balance without locking.
func (s *Storage) GetUserBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	const op = "storage.GetUserBalance"
	select {
	case <-ctx.Done():
		return decimal.Zero, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var balance decimal.Decimal
	err := s.queryRow(ctx, `SELECT credit_balance FROM users WHERE id = ?`, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// UpdateUserBalance overwrites the denormalised balance.
func (s *Storage) UpdateUserBalance(ctx context.Context, id string, balance decimal.Decimal, now time.Time) error {
	const op = "storage.UpdateUserBalance"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.exec(ctx, `UPDATE users SET credit_balance = ?, updated_at = ? WHERE id = ?`, balance, now, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
