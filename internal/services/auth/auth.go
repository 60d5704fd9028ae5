// Package auth registers accounts and issues access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/clock"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/jwt"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/password"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be buyer or supplier")
)

// UserRepository is the part of the storage the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service handles registration and login.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	clock    clock.Clock
	log      *slog.Logger
}

func NewAuthService(users UserRepository, jwtMaker jwt.Maker, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{users: users, jwtMaker: jwtMaker, clock: clk, log: log}
}

// Register creates an account with a zero balance. Suppliers start unverified.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "auth.Register"
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.clock.Now()
	user := &models.User{
		ID:                 uuid.NewString(),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       hashed,
		Role:               req.Role,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		CompanyName:        req.CompanyName,
		VATNumber:          req.VATNumber,
		Phone:              req.Phone,
		CreditBalance:      decimal.Zero,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

// Login checks the password and returns a signed token together with the user.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}
