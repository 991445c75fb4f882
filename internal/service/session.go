package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecoleta/ecoleta-go/internal/crypto"
	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/repository"
)

const (
	// TokenLifetime is how long an issued session token stays valid.
	TokenLifetime = time.Hour
	// NearExpiryThreshold is the remaining lifetime below which a token is
	// reported as near expiry and becomes eligible for renewal.
	NearExpiryThreshold = 5 * time.Minute
)

var (
	ErrTokenMissing  = errors.New("token not provided")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrUserNotFound  = errors.New("user not found or inactive")
	ErrRenewalFailed = errors.New("could not renew token")
)

// UserLookup finds staff users. Both methods return
// repository.ErrUserNotFound for missing or inactive users.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionService issues, verifies and renews session tokens.
type SessionService struct {
	users UserLookup
	key   []byte
	now   func() time.Time
}

// NewSessionService creates a SessionService signing with key. A nil now
// means time.Now.
func NewSessionService(users UserLookup, key []byte, now func() time.Time) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{users: users, key: key, now: now}
}

// Issue signs a new token for user.
func (s *SessionService) Issue(user model.UserResponse) (model.IssuedToken, error) {
	token, _, err := crypto.GenerateToken(user.ID, user.Email, s.key, s.now(), TokenLifetime)
	if err != nil {
		return model.IssuedToken{}, err
	}

	return model.IssuedToken{
		Token:     token,
		User:      user,
		ExpiresIn: int(TokenLifetime / time.Second),
	}, nil
}

// Verify checks token and confirms its user is still active.
func (s *SessionService) Verify(ctx context.Context, token string) (model.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Session{}, ErrTokenMissing
	}

	now := s.now()
	claims, err := crypto.ValidateToken(token, s.key, now)
	if err != nil {
		if errors.Is(err, crypto.ErrExpiredToken) {
			return model.Session{}, ErrTokenExpired
		}
		return model.Session{}, ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Session{}, ErrUserNotFound
		}
		return model.Session{}, err
	}

	remaining := int64(claims.ExpiresAt.Time.Sub(now) / time.Second)
	if remaining < 0 {
		remaining = 0
	}

	return model.Session{
		User:             user.Public(),
		RemainingSeconds: remaining,
		NearExpiry:       remaining < int64(NearExpiryThreshold/time.Second),
	}, nil
}

// Renew returns token unchanged while it has plenty of life left, and a
// freshly issued token once it is near expiry.
func (s *SessionService) Renew(ctx context.Context, token string) (model.Renewal, error) {
	session, err := s.Verify(ctx, token)
	if err != nil {
		return model.Renewal{}, fmt.Errorf("%w: %w", ErrRenewalFailed, err)
	}

	if !session.NearExpiry {
		return model.Renewal{
			Token:            strings.TrimSpace(token),
			Renewed:          false,
			RemainingSeconds: session.RemainingSeconds,
		}, nil
	}

	issued, err := s.Issue(session.User)
	if err != nil {
		return model.Renewal{}, fmt.Errorf("%w: %w", ErrRenewalFailed, err)
	}

	return model.Renewal{
		Token:     issued.Token,
		Renewed:   true,
		ExpiresIn: issued.ExpiresIn,
	}, nil
}
