package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sunnah_sayings/internal/model"
	"sunnah_sayings/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// RegisterResult tells the caller whether registration created a record
type RegisterResult struct {
	User    *model.User
	Created bool
}

// UserService provides user registration and role lookups
type UserService interface {
	Register(ctx context.Context, req model.RegisterUserRequest) (*RegisterResult, error)
	GetRole(ctx context.Context, email string) (string, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
}

type userService struct {
	repo repository.UserRepository
	now  func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo, now: time.Now}
}

// NormalizeEmail lowercases and trims an address before it is written.
// Lookups only trim; the store matches emails case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user once per email. A repeated registration, or
// one that loses an insert race on the unique index, reports Created=false.
func (s *userService) Register(ctx context.Context, req model.RegisterUserRequest) (*RegisterResult, error) {
	email := NormalizeEmail(req.Email)

	existing, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return &RegisterResult{User: existing, Created: false}, nil
	}

	user := &model.User{
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		PhotoURL:  strings.TrimSpace(req.PhotoURL),
		Role:      model.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return &RegisterResult{Created: false}, nil
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	return &RegisterResult{User: user, Created: true}, nil
}

// GetRole returns the user's effective role
func (s *userService) GetRole(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	return user.EffectiveRole(), nil
}

// IsAdmin re-reads the user record on every call; role changes apply on
// the next request.
func (s *userService) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to find user: %w", err)
	}
	return user != nil && user.IsAdmin(), nil
}
