package model

import "time"

// User represents a staff member in the database.
type User struct {
	ID         int64
	Email      string
	Credential string
	Name       string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Public returns the user without its credential.
func (u User) Public() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// LoginRequest represents a staff login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data safe for API responses (no credential).
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// IssuedToken is returned by login and by a renewal that issued a new token.
type IssuedToken struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	ExpiresIn int          `json:"expires_in"`
}

// Session is the result of verifying a session token.
type Session struct {
	User             UserResponse `json:"user"`
	RemainingSeconds int64        `json:"remaining_seconds"`
	NearExpiry       bool         `json:"near_expiry"`
}

// Renewal is the result of a renewal attempt. ExpiresIn is set when a new
// token was issued, RemainingSeconds when the old one was kept.
type Renewal struct {
	Token            string `json:"token"`
	Renewed          bool   `json:"renewed"`
	ExpiresIn        int    `json:"expires_in,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}
