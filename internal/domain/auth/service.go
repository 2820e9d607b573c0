package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// Service handles registration and login. Everything past this point in the
// system only sees the user id from the validated token.
type Service struct {
	users Repository
	jwt   jwtService
}

func NewService(users Repository, jwt jwtService) *Service {
	return &Service{users: users, jwt: jwt}
}

func (s *Service) Register(ctx context.Context, username, password, role string) (*User, error) {
	username = strings.TrimSpace(username)
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(user.ID, user.Role)
}
