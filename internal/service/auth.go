package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ecoleta/ecoleta-go/internal/crypto"
	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/repository"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)

// AuthService handles staff login.
type AuthService struct {
	users    UserLookup
	sessions *SessionService
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserLookup, sessions *SessionService) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Login authenticates a staff user and returns a session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.IssuedToken, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return model.IssuedToken{}, ErrCredentialsRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.IssuedToken{}, ErrInvalidCredentials
		}
		return model.IssuedToken{}, err
	}

	match, err := crypto.CheckPassword(req.Password, user.Credential)
	if err != nil {
		return model.IssuedToken{}, err
	}
	if !match {
		return model.IssuedToken{}, ErrInvalidCredentials
	}

	return s.sessions.Issue(user.Public())
}
