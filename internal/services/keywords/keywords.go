// Package keywords manages the search terms users subscribe to.
package keywords

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrKeywordExists   = errors.New("keyword already subscribed")
	ErrKeywordNotFound = errors.New("keyword not found")
	ErrInvalidKeyword  = errors.New("keyword must be 2 to 64 characters")
)

// Repository is the keyword storage.
type Repository interface {
	CreateKeyword(ctx context.Context, k *models.Keyword) error
	DeleteKeyword(ctx context.Context, userID, id string) error
	ListKeywords(ctx context.Context, userID string) ([]*models.Keyword, error)
}

// Service manages keyword subscriptions.
type Service struct {
	repo  Repository
	clock clock.Clock
	log   *slog.Logger
}

func NewKeywordService(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{repo: repo, clock: clk, log: log}
}

// Add subscribes the user to term after normalising it.
func (s *Service) Add(ctx context.Context, userID, term string) (*models.Keyword, error) {
	const op = "keywords.Add"
	term = models.NormalizeKeyword(term)
	if n := len([]rune(term)); n < 2 || n > 64 {
		return nil, ErrInvalidKeyword
	}

	k := &models.Keyword{
		ID:        uuid.NewString(),
		UserID:    userID,
		Keyword:   term,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateKeyword(ctx, k); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrKeywordExists
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("keyword added", slog.String("user_id", userID), slog.String("keyword", term))
	return k, nil
}

// Remove deletes one of the user's keywords.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteKeyword(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrKeywordNotFound
		}
		return err
	}
	return nil
}

// List returns the user's keywords.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Keyword, error) {
	return s.repo.ListKeywords(ctx, userID)
}
