// Package payment sells credits through the PayFast hosted checkout.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/metrics"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/paymentprovider"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrInvalidCredits  = errors.New("credits must be between 1 and the purchase limit")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAmountMismatch  = errors.New("paid amount does not match payment")
	ErrInvalidITN      = errors.New("invalid payment notification")
)

// Repository is the payment storage.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPaymentForUpdate(ctx context.Context, id string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, providerID string, now time.Time) error
	ListPayments(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
}

// Ledger credits completed purchases.
type Ledger interface {
	PurchaseCredits(ctx context.Context, userID string, credits decimal.Decimal, paymentID string) (decimal.Decimal, error)
}

// Provider signs checkout forms and verifies notifications.
type Provider interface {
	MerchantID() string
	MerchantKey() string
	ProcessURL() string
	Sign(form paymentprovider.Form) paymentprovider.Form
	VerifyITN(form paymentprovider.Form) error
	ValidateITN(ctx context.Context, body string) error
}

// Service runs credit purchases.
type Service struct {
	repo          Repository
	ledger        Ledger
	provider      Provider
	clock         clock.Clock
	randPerCredit decimal.Decimal
	maxCredits    int64
	urls          config.PayFast
	log           *slog.Logger
}

func NewPaymentService(
	repo Repository,
	ledger Ledger,
	provider Provider,
	clk clock.Clock,
	cfg config.PayFast,
	credits config.Credits,
	log *slog.Logger,
) *Service {
	return &Service{
		repo:          repo,
		ledger:        ledger,
		provider:      provider,
		clock:         clk,
		randPerCredit: decimal.NewFromFloat(credits.RandPerCredit),
		maxCredits:    credits.MaxPurchase,
		urls:          cfg,
		log:           log,
	}
}

// StartPurchase records a pending payment and returns the signed PayFast form.
func (s *Service) StartPurchase(ctx context.Context, userID string, credits int64) (*models.Checkout, error) {
	const op = "payment.StartPurchase"
	if credits < 1 || credits > s.maxCredits {
		return nil, ErrInvalidCredits
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	p := &models.Payment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Credits:   decimal.NewFromInt(credits),
		Amount:    decimal.NewFromInt(credits).Mul(s.randPerCredit).Round(2),
		Status:    models.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	form := s.provider.Sign(paymentprovider.Form{
		{Key: "merchant_id", Value: s.provider.MerchantID()},
		{Key: "merchant_key", Value: s.provider.MerchantKey()},
		{Key: "return_url", Value: s.urls.ReturnURL},
		{Key: "cancel_url", Value: s.urls.CancelURL},
		{Key: "notify_url", Value: s.urls.NotifyURL},
		{Key: "name_first", Value: user.FirstName},
		{Key: "email_address", Value: user.Email},
		{Key: "m_payment_id", Value: p.ID},
		{Key: "amount", Value: p.Amount.StringFixed(2)},
		{Key: "item_name", Value: fmt.Sprintf("%d Business Daily Deals credits", credits)},
		{Key: "custom_str1", Value: userID},
		{Key: "custom_int1", Value: fmt.Sprintf("%d", credits)},
	})

	s.log.Info("payment started", slog.String("payment_id", p.ID), slog.String("user_id", userID), slog.Int64("credits", credits))
	return &models.Checkout{
		PaymentID:   p.ID,
		PaymentURL:  s.provider.ProcessURL(),
		PaymentData: form.Map(),
		Fields:      form.Keys(),
	}, nil
}

// HandleITN applies a PayFast notification. Notifications for a payment that is
// no longer pending are acknowledged without effect.
func (s *Service) HandleITN(ctx context.Context, body string) error {
	const op = "payment.HandleITN"

	form, err := paymentprovider.ParseForm(body)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidITN, err)
	}
	if err := s.provider.VerifyITN(form); err != nil {
		s.log.Warn("itn rejected", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidITN, err)
	}
	if s.urls.ValidateITN {
		if err := s.provider.ValidateITN(ctx, body); err != nil {
			s.log.Warn("itn validation failed", sl.Err(err))
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidITN, err)
		}
	}

	gross, err := decimal.NewFromString(form.Get("amount_gross"))
	if err != nil {
		return fmt.Errorf("%s: %w: amount_gross", op, ErrInvalidITN)
	}
	paymentID := form.Get("m_payment_id")
	providerID := form.Get("pf_payment_id")
	pfStatus := form.Get("payment_status")

	var (
		outcome   models.PaymentStatus
		purchased decimal.Decimal
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetPaymentForUpdate(ctx, paymentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if p.Status != models.PaymentPending {
			outcome = p.Status
			return nil
		}
		if !gross.Round(2).Equal(p.Amount.Round(2)) {
			return ErrAmountMismatch
		}

		now := s.clock.Now()
		switch pfStatus {
		case "COMPLETE":
			outcome = models.PaymentComplete
			if err := s.repo.UpdatePaymentStatus(ctx, p.ID, outcome, providerID, now); err != nil {
				return err
			}
			purchased = p.Credits
			_, err := s.ledger.PurchaseCredits(ctx, p.UserID, p.Credits, p.ID)
			return err
		case "CANCELLED":
			outcome = models.PaymentCancelled
		case "FAILED":
			outcome = models.PaymentFailed
		default:
			outcome = models.PaymentPending
			return nil
		}
		return s.repo.UpdatePaymentStatus(ctx, p.ID, outcome, providerID, now)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.Payments.WithLabelValues(string(outcome)).Inc()
	if purchased.IsPositive() {
		metrics.CreditsPurchased.Add(purchased.InexactFloat64())
	}
	s.log.Info("itn processed",
		slog.String("payment_id", paymentID),
		slog.String("payfast_status", pfStatus),
		slog.String("status", string(outcome)),
	)
	return nil
}

// ListPayments returns the user's purchases, newest first.
func (s *Service) ListPayments(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	return s.repo.ListPayments(ctx, userID, limit, offset)
}
