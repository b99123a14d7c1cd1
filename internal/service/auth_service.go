package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Chou1102/QuickChatWeb/internal/auth"
	"github.com/Chou1102/QuickChatWeb/internal/models"
	"github.com/Chou1102/QuickChatWeb/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.Manager
}

func NewAuthService(users repository.UserRepository, tokens *auth.Manager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a user and returns it with a signed token.
func (s *AuthService) Register(ctx context.Context, username, email, password, avatar string) (*models.UserView, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", validationf("username, email and password are required")
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", validationf("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &models.User{Username: username, Email: email, Avatar: avatar, Password: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, "", err
	}
	view := models.ViewOf(u)
	return &view, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.UserView, string, error) {
	if email == "" || password == "" {
		return nil, "", validationf("email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, "", err
	}
	view := models.ViewOf(u)
	return &view, token, nil
}

// SearchUsers matches username or email against query, excluding the
// caller from the result.
func (s *AuthService) SearchUsers(ctx context.Context, callerID, query string) ([]models.UserView, error) {
	if query == "" {
		return nil, validationf("search query is required")
	}
	users, err := s.users.Search(ctx, query, 20)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserView, 0, len(users))
	for _, u := range users {
		if u.ID == callerID {
			continue
		}
		out = append(out, models.ViewOf(u))
	}
	return out, nil
}
