package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/repositories"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Login checks the credentials. Every attempt is logged with its outcome.
func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.logger.Warn("Login failed", "username", input.Username, "reason", "unknown user")
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn("Login failed", "username", input.Username, "reason", "wrong password")
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}
