// Package coupons issues one-time redemption codes for deals and verifies them at the supplier.
package coupons

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/couponcode"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/metrics"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

const maxMintAttempts = 5

const (
	MsgNotFound        = "Coupon not found"
	MsgAlreadyRedeemed = "Coupon has already been redeemed"
	MsgExpired         = "Coupon has expired"
	MsgReady           = "Coupon is valid and ready to redeem"
	msgNotOwner        = "Coupon belongs to another supplier"
)

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrDealNotFound    = errors.New("deal not found")
	ErrDealNotActive   = errors.New("deal is not active")
	ErrOwnDeal         = errors.New("cannot claim a coupon for your own deal")
	ErrNotOwner        = errors.New("coupon belongs to another supplier")
	ErrAlreadyRedeemed = errors.New("coupon has already been redeemed")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCodeExhausted   = errors.New("could not mint a unique coupon code")
)

// Repository is the coupon storage.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateCoupon(ctx context.Context, c *models.Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetCouponByCodeForUpdate(ctx context.Context, code string) (*models.Coupon, error)
	FindActiveCoupon(ctx context.Context, buyerID, dealID string, now time.Time) (*models.Coupon, error)
	MarkCouponRedeemed(ctx context.Context, id string, at time.Time, location, notes string) error
	InsertRedemptionAttempt(ctx context.Context, a *models.RedemptionAttempt) error
	ListRedemptionAttempts(ctx context.Context, couponID string) ([]*models.RedemptionAttempt, error)
	ListCoupons(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Coupon, error)
}

// Service handles the coupon lifecycle.
type Service struct {
	repo  Repository
	clock clock.Clock
	ttl   time.Duration
	mint  func() (string, error)
	log   *slog.Logger
}

func NewCouponService(repo Repository, clk clock.Clock, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{repo: repo, clock: clk, ttl: ttl, mint: couponcode.New, log: log}
}

// Create returns the buyer's open coupon for the deal or mints a new one.
func (s *Service) Create(ctx context.Context, buyerID, dealID string) (*models.Coupon, error) {
	const op = "coupons.Create"
	now := s.clock.Now()

	deal, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !deal.IsLive(now) {
		return nil, ErrDealNotActive
	}
	if deal.SupplierID == buyerID {
		return nil, ErrOwnDeal
	}

	existing, err := s.repo.FindActiveCoupon(ctx, buyerID, dealID, now)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for range maxMintAttempts {
		code, err := s.mint()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		c := &models.Coupon{
			ID:         uuid.NewString(),
			Code:       code,
			DealID:     deal.ID,
			BuyerID:    buyerID,
			SupplierID: deal.SupplierID,
			ExpiresAt:  now.Add(s.ttl),
			CreatedAt:  now,
		}
		err = s.repo.CreateCoupon(ctx, c)
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Warn("coupon code collision", slog.String("code", code))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		metrics.CouponsIssued.Inc()
		s.log.Info("coupon issued", slog.String("coupon_id", c.ID), slog.String("deal_id", deal.ID))
		return c, nil
	}
	return nil, fmt.Errorf("%s: %w", op, ErrCodeExhausted)
}

// Validate looks a code up for the verification screen. Expiry is reported before redemption.
func (s *Service) Validate(ctx context.Context, code string) (*models.CouponValidation, error) {
	const op = "coupons.Validate"

	c, err := s.repo.GetCouponByCode(ctx, couponcode.Normalize(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &models.CouponValidation{Message: MsgNotFound}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v := &models.CouponValidation{Valid: true, Coupon: c}
	switch {
	case c.IsExpired(s.clock.Now()):
		v.Message = MsgExpired
	case c.IsRedeemed:
		v.Message = MsgAlreadyRedeemed
	default:
		v.CanRedeem = true
		v.Message = MsgReady
	}

	if deal, err := s.repo.GetDeal(ctx, c.DealID); err == nil {
		v.Deal = &models.CouponDealSnapshot{
			ID:          deal.ID,
			Title:       deal.Title,
			Description: deal.Description,
			Price:       deal.Price.StringFixed(2),
			DealType:    deal.DealType,
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if buyer, err := s.repo.GetUser(ctx, c.BuyerID); err == nil {
		v.Buyer = &models.CouponBuyerSnapshot{
			ID:          buyer.ID,
			FirstName:   buyer.FirstName,
			LastName:    buyer.LastName,
			Email:       buyer.Email,
			CompanyName: buyer.CompanyName,
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Redeem marks the coupon used. Every attempt is audited, including rejected ones.
func (s *Service) Redeem(ctx context.Context, supplierID, code string, req models.RedeemRequest) (*models.Coupon, error) {
	const op = "coupons.Redeem"
	code = couponcode.Normalize(code)

	var (
		coupon    *models.Coupon
		rejection error
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetCouponByCodeForUpdate(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				rejection = ErrCouponNotFound
				return nil
			}
			return err
		}

		now := s.clock.Now()
		attempt := &models.RedemptionAttempt{
			ID:         uuid.NewString(),
			CouponID:   c.ID,
			SupplierID: supplierID,
			Location:   req.Location,
			Notes:      req.Notes,
			CreatedAt:  now,
		}
		switch {
		case c.SupplierID != supplierID:
			rejection, attempt.Reason = ErrNotOwner, msgNotOwner
		case c.IsExpired(now):
			rejection, attempt.Reason = ErrCouponExpired, MsgExpired
		case c.IsRedeemed:
			rejection, attempt.Reason = ErrAlreadyRedeemed, MsgAlreadyRedeemed
		}

		if rejection == nil {
			if err := s.repo.MarkCouponRedeemed(ctx, c.ID, now, req.Location, req.Notes); err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					return err
				}
				rejection, attempt.Reason = ErrAlreadyRedeemed, MsgAlreadyRedeemed
			} else {
				attempt.Success = true
				c.IsRedeemed = true
				c.RedeemedAt = &now
				c.RedemptionLocation = req.Location
				c.RedemptionNotes = req.Notes
			}
		}
		coupon = c
		return s.repo.InsertRedemptionAttempt(ctx, attempt)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if rejection != nil {
		metrics.CouponRedemptions.WithLabelValues("rejected").Inc()
		s.log.Info("coupon redemption rejected", slog.String("code", code), slog.String("reason", rejection.Error()))
		return nil, rejection
	}
	metrics.CouponRedemptions.WithLabelValues("redeemed").Inc()
	s.log.Info("coupon redeemed", slog.String("coupon_id", coupon.ID), slog.String("supplier_id", supplierID))
	return coupon, nil
}

// History returns the redemption audit trail of a coupon issued against the supplier's deal.
func (s *Service) History(ctx context.Context, supplierID, code string) ([]*models.RedemptionAttempt, error) {
	c, err := s.repo.GetCouponByCode(ctx, couponcode.Normalize(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	if c.SupplierID != supplierID {
		return nil, ErrNotOwner
	}
	return s.repo.ListRedemptionAttempts(ctx, c.ID)
}

// List returns the buyer's coupons or those issued against the supplier's deals.
func (s *Service) List(ctx context.Context, userID string, role models.Role, limit, offset int) ([]*models.Coupon, error) {
	return s.repo.ListCoupons(ctx, userID, role, limit, offset)
}
