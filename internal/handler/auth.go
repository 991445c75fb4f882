package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ecoleta/ecoleta-go/internal/middleware"
	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/service"
)

// Authenticator logs staff users in.
type Authenticator interface {
	Login(ctx context.Context, req model.LoginRequest) (model.IssuedToken, error)
}

// Renewer renews session tokens.
type Renewer interface {
	Renew(ctx context.Context, token string) (model.Renewal, error)
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	auth     Authenticator
	sessions Renewer
	metrics  Recorder
}

// NewAuthHandler creates a new AuthHandler. rec may be nil.
func NewAuthHandler(auth Authenticator, sessions Renewer, rec Recorder) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, metrics: recorderOrNop(rec)}
}

// HandleLogin handles POST /api/v1/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrCredentialsRequired):
			h.metrics.Login("rejected")
		default:
			h.metrics.Login("error")
		}
		writeError(w, r, err)
		return
	}

	h.metrics.Login("success")
	writeJSON(w, http.StatusOK, resp)
}

// HandleVerify handles GET /api/v1/auth/verify requests. It runs behind
// SessionAuth, which has already verified the token.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// HandleRenew handles POST /api/v1/auth/renew requests. The bearer token is
// read directly rather than through SessionAuth so that renewal errors are
// reported as such.
func (h *AuthHandler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	renewal, err := h.sessions.Renew(r.Context(), middleware.BearerToken(r))
	if err != nil {
		h.metrics.Renewal("failed")
		writeError(w, r, err)
		return
	}

	if renewal.Renewed {
		h.metrics.Renewal("renewed")
	} else {
		h.metrics.Renewal("kept")
	}
	writeJSON(w, http.StatusOK, renewal)
}
