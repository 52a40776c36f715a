package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fcraft/portfolio-tracker/internal/auth"
	"github.com/fcraft/portfolio-tracker/internal/models"
)

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "email and username are required")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	user := &models.User{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hash,
	}
	if err := h.db.CreateUser(user); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.log.Info().Str("username", user.Username).Msg("user registered")
	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	user, err := h.db.GetUserByUsername(req.Username)
	if err != nil || !auth.VerifyPassword(user.HashedPassword, req.Password) {
		// Same response for unknown user and wrong password.
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "incorrect username or password")
		return
	}
	if user.Disabled {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "account disabled")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// CurrentUser handles GET /users/me
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
