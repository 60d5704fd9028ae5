// Package notifications creates keyword-match notifications for new deals and
// serves the in-app notification inbox.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/metrics"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/rabbitmq"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Repository is the storage the fan-out and inbox need.
type Repository interface {
	FindKeywordRecipients(ctx context.Context, dealID, excludeUserID string) ([]models.Recipient, error)
	InsertNotifications(ctx context.Context, items []*models.Notification) (int64, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}

// Publisher sends events to the broker.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service fans out notifications and serves the inbox.
type Service struct {
	repo      Repository
	publisher Publisher
	clock     clock.Clock
	log       *slog.Logger
}

// NewNotificationService creates the service. publisher may be nil, in which case no
// events are emitted.
func NewNotificationService(repo Repository, publisher Publisher, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		log:       log,
	}
}

// Match is one notification created by FanOut, kept for publishing after commit.
type Match struct {
	Notification *models.Notification
	Recipient    models.Recipient
}

// FanOut creates one notification per subscriber whose keywords match the deal. It
// runs in the transaction carried by ctx and returns what it created.
func (s *Service) FanOut(ctx context.Context, deal *models.Deal) ([]Match, error) {
	const op = "notifications.FanOut"
	if len(deal.Keywords) == 0 {
		return nil, nil
	}

	recipients, err := s.repo.FindKeywordRecipients(ctx, deal.ID, deal.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	now := s.clock.Now()
	matches := make([]Match, 0, len(recipients))
	items := make([]*models.Notification, 0, len(recipients))
	for _, r := range recipients {
		n := &models.Notification{
			ID:        uuid.NewString(),
			UserID:    r.UserID,
			DealID:    deal.ID,
			Type:      models.NotificationTypeDealMatch,
			Title:     title(deal),
			Message:   fmt.Sprintf("%s matches one of your keywords.", deal.Title),
			CreatedAt: now,
		}
		items = append(items, n)
		matches = append(matches, Match{Notification: n, Recipient: r})
	}

	if _, err := s.repo.InsertNotifications(ctx, items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return matches, nil
}

func title(deal *models.Deal) string {
	if deal.DealType == models.DealTypeHot {
		return "New hot deal: " + deal.Title
	}
	return "New deal: " + deal.Title
}

// Publish emits a deal.matched event for every match whose user wants e-mail. It is
// called after the creating transaction committed; failures are logged only.
func (s *Service) Publish(deal *models.Deal, matches []Match) {
	metrics.NotificationsCreated.Add(float64(len(matches)))
	if s.publisher == nil {
		return
	}
	for _, m := range matches {
		if !m.Recipient.EmailNotifications {
			continue
		}
		event := models.DealMatchedEvent{
			NotificationID: m.Notification.ID,
			UserID:         m.Recipient.UserID,
			Email:          m.Recipient.Email,
			FirstName:      m.Recipient.FirstName,
			DealID:         deal.ID,
			DealTitle:      deal.Title,
			DealType:       deal.DealType,
			ExpiresAt:      deal.ExpiresAt,
		}
		if err := s.publisher.Publish(rabbitmq.RoutingDealMatched, event); err != nil {
			s.log.Warn("failed to publish deal match", slog.String("deal_id", deal.ID),
				slog.String("user_id", m.Recipient.UserID), sl.Err(err))
		}
	}
}

// Inbox is a page of notifications with the unread total.
type Inbox struct {
	Items  []*models.Notification `json:"items"`
	Unread int                    `json:"unread"`
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*Inbox, error) {
	items, err := s.repo.ListNotifications(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Items: items, Unread: unread}, nil
}

// MarkRead marks one notification of the user as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkNotificationRead(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// MarkAllRead marks every notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}
