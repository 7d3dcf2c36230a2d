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

const minPasswordLength = 8

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, input ChangePasswordInput) error
	Create(ctx context.Context, input CreateUserInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// EnsureAdmin creates an admin account with the given credentials unless
	// the username is already taken. It reports whether an account was created.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

type ProfileInput struct {
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type CreateUserInput struct {
	Username  string          `json:"username" validate:"required,max=150"`
	Password  string          `json:"password" validate:"required,min=8"`
	Role      models.UserRole `json:"role" validate:"required,oneof=operator poweruser admin"`
	FirstName string          `json:"first_name" validate:"max=150"`
	LastName  string          `json:"last_name" validate:"max=150"`
	Email     string          `json:"email" validate:"omitempty,email,max=254"`
}

type userService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, logger *slog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input ProfileInput) (*models.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = input.Email

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, handleRepositoryError(err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID int, input ChangePasswordInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return handleRepositoryError(err)
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return newValidationError("old_password", "Your old password was entered incorrectly.")
		}
		return fmt.Errorf("failed to compare password hash: %w", err)
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return handleRepositoryError(err)
	}

	s.logger.Info("Password changed", "user_id", userID)
	return nil
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        input.Email,
		Role:         input.Role,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("User created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return false, fmt.Errorf("failed to look up admin account: %w", err)
	}

	_, err = s.Create(ctx, CreateUserInput{
		Username: username,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, ErrUsernameConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", newValidationError("password", fmt.Sprintf("Ensure this field has at least %d characters.", minPasswordLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
