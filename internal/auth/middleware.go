package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fcraft/portfolio-tracker/internal/models"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// UserLookup resolves a user ID from a verified token to a full account.
type UserLookup interface {
	GetUserByID(id int64) (*models.User, error)
}

// Middleware authenticates requests with a bearer token and attaches the
// resolved user to the request context.
type Middleware struct {
	tokens *TokenIssuer
	users  UserLookup
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenIssuer, users UserLookup) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Require wraps a handler, rejecting requests without a valid token or
// with a disabled account.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "missing bearer token")
			return
		}

		userID, err := m.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}

		user, err := m.users.GetUserByID(userID)
		if err != nil {
			unauthorized(w, "unknown user")
			return
		}
		if user.Disabled {
			unauthorized(w, "account disabled")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

// UserFromContext returns the authenticated user attached by Require.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "UNAUTHORIZED", "message": message},
	})
}
