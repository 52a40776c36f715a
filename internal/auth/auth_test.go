package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcraft/portfolio-tracker/internal/config"
	"github.com/fcraft/portfolio-tracker/internal/models"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{Secret: "test-secret", TokenTTL: time.Minute})

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{Secret: "secret-a", TokenTTL: time.Minute})
	other := NewTokenIssuer(config.AuthConfig{Secret: "secret-b", TokenTTL: time.Minute})

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{Secret: "test-secret", TokenTTL: -time.Minute})

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerify_Garbage(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{Secret: "test-secret", TokenTTL: time.Minute})

	_, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type mockUserLookup struct {
	users map[int64]*models.User
}

func (m *mockUserLookup) GetUserByID(id int64) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %d not found", id)
}

func newMiddlewareFixture(ttl time.Duration) (*Middleware, *TokenIssuer, *mockUserLookup) {
	issuer := NewTokenIssuer(config.AuthConfig{Secret: "test-secret", TokenTTL: ttl})
	lookup := &mockUserLookup{users: map[int64]*models.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob", Disabled: true},
	}}
	return NewMiddleware(issuer, lookup), issuer, lookup
}

func TestMiddleware_AttachesUser(t *testing.T) {
	mw, issuer, _ := newMiddlewareFixture(time.Minute)
	token, err := issuer.Issue(1)
	require.NoError(t, err)

	var seen *models.User
	handler := mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "alice", seen.Username)
}

func TestMiddleware_Rejections(t *testing.T) {
	mw, issuer, _ := newMiddlewareFixture(time.Minute)

	validForMissingUser, err := issuer.Issue(99)
	require.NoError(t, err)
	disabledToken, err := issuer.Issue(2)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc123"},
		{"bad token", "Bearer nope"},
		{"unknown user", "Bearer " + validForMissingUser},
		{"disabled user", "Bearer " + disabledToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be reached")
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}
