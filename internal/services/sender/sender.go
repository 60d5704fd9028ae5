// Package sender turns notification events into e-mails.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/smtp"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
)

const (
	timeLayout  = "02 Jan 2006 15:04 MST"
	sendTimeout = 30 * time.Second
)

// Service sends e-mails through the configured relay.
type Service struct {
	dialer  smtp.Dialer
	baseURL string
	clock   clock.Clock
	log     *slog.Logger
}

// NewSenderService returns a Service. baseURL prefixes deal links in messages.
func NewSenderService(dialer smtp.Dialer, baseURL string, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		dialer:  dialer,
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   clk,
		log:     log,
	}
}

// SendDealMatched tells a buyer about a new deal matching their keywords.
func (s *Service) SendDealMatched(body []byte) error {
	var message models.DealMatchedEvent
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "New deal: " + message.DealTitle
	if message.DealType == models.DealTypeHot {
		subject = "New hot deal: " + message.DealTitle
	}
	bodyText := fmt.Sprintf("Hi %s,\r\n\r\n"+
		"A deal matching your keywords was just posted on Business Daily Deals:\r\n\r\n"+
		"%s\r\n%s\r\n\r\n"+
		"The deal runs until %s.\r\n\r\n"+
		"You can switch these e-mails off on your profile page.",
		message.FirstName, message.DealTitle, s.dealURL(message.DealID), message.ExpiresAt.Format(timeLayout))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendDealExpiring reminds a supplier that a deal is about to expire.
func (s *Service) SendDealExpiring(body []byte) error {
	var message models.DealExpiringEvent
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your deal expires soon: " + message.DealTitle
	bodyText := fmt.Sprintf("Hi %s,\r\n\r\n"+
		"Your deal \"%s\" expires on %s.\r\n"+
		"Reactivate it from your dashboard to keep it listed:\r\n%s",
		message.FirstName, message.DealTitle, message.ExpiresAt.Format(timeLayout), s.dealURL(message.DealID))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *Service) dealURL(id string) string {
	return s.baseURL + "/deals/" + id
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg := smtp.Message{
		From:    s.dialer.From(),
		To:      to,
		Subject: subject,
		Body:    bodyText,
		Date:    s.clock.Now(),
	}
	if err := smtp.Send(ctx, s.dialer, msg); err != nil {
		s.log.Error("failed to send email", slog.Any("to", to), sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
