package decks

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/storage"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
	"github.com/ramonehamilton/mana-tomb/internal/storage/repository"
)

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, invalid("username", "username is required")
	}
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "email is not valid")
	}
	if password == "" {
		return nil, invalid("password", "password is required")
	}

	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, invalid("password", err.Error())
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = storage.RetryOnBusy(ctx, func() error {
		return s.store.UserRepo().Create(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicateUser) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("Registered user", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate returns the user matching email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("email", "email and password are required")
	}

	user, err := s.store.UserRepo().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CurrentUser returns the user with the given ID.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.UserRepo().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Profile returns a user's public view: their username and public decks,
// most recently updated first.
func (s *Service) Profile(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.store.UserRepo().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	decks, err := s.store.DeckRepo().ListByUser(ctx, user.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list public decks: %w", err)
	}

	return &models.Profile{
		Username:    user.Username,
		PublicDecks: decks,
	}, nil
}
