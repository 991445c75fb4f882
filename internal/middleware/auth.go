package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/service"
)

type contextKey string

const sessionKey contextKey = "session"

// Machine-readable codes attached to token failures.
const (
	CodeTokenMissing = "TOKEN_MISSING"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "INVALID_TOKEN"
)

// SessionVerifier checks a raw session token.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (model.Session, error)
}

// SessionAuth returns middleware that requires a valid Bearer session token.
// Sessions close to expiry get X-Token-Expiring and X-Time-Remaining headers
// so clients know to renew.
func SessionAuth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := verifier.Verify(r.Context(), BearerToken(r))
			if err != nil {
				status, msg, code := TokenFailure(err)
				if status == http.StatusInternalServerError {
					slog.Error("session verification failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
				}
				writeJSONError(w, status, msg, code)
				return
			}

			if session.NearExpiry {
				w.Header().Set("X-Token-Expiring", "true")
				w.Header().Set("X-Time-Remaining", strconv.FormatInt(session.RemainingSeconds, 10))
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
// It returns "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// TokenFailure maps a session error to an HTTP status, message and code.
func TokenFailure(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrTokenMissing):
		return http.StatusUnauthorized, "access token is required", CodeTokenMissing
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired, please log in again", CodeTokenExpired
	case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized, "invalid token", CodeTokenInvalid
	default:
		return http.StatusInternalServerError, "internal server error", ""
	}
}

// SessionFromContext extracts the authenticated session from the request context.
func SessionFromContext(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey).(model.Session)
	return s, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	body := map[string]string{"error": msg}
	if code != "" {
		body["code"] = code
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
