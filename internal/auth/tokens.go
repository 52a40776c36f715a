package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fcraft/portfolio-tracker/internal/config"
)

// ErrInvalidToken covers every token failure mode: bad signature, expiry,
// malformed claims. Callers treat them all as 401.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies bearer tokens for API access.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer from auth configuration.
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
	}
}

// Issue creates a signed token for a user ID, valid for the configured TTL.
func (t *TokenIssuer) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user ID it was issued for.
func (t *TokenIssuer) Verify(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
