package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fcraft/portfolio-tracker/internal/auth"
	"github.com/fcraft/portfolio-tracker/internal/models"
)

// CreatePortfolio handles POST /portfolios
func (h *Handler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	p := &models.Portfolio{UserID: user.ID, Name: req.Name}
	if err := h.db.CreatePortfolio(p); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// ListPortfolios handles GET /portfolios
func (h *Handler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	portfolios, err := h.db.ListPortfolios(user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if portfolios == nil {
		portfolios = []*models.Portfolio{}
	}
	respondJSON(w, http.StatusOK, portfolios)
}

// GetPortfolio handles GET /portfolios/{id}
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid portfolio id")
		return
	}

	p, err := h.db.GetPortfolio(id, user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// UpdatePortfolio handles PUT /portfolios/{id}
func (h *Handler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid portfolio id")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	p := &models.Portfolio{ID: id, UserID: user.ID, Name: req.Name}
	if err := h.db.UpdatePortfolio(p); err != nil {
		h.respondDomainError(w, err)
		return
	}

	updated, err := h.db.GetPortfolio(id, user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeletePortfolio handles DELETE /portfolios/{id}
func (h *Handler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid portfolio id")
		return
	}

	if err := h.db.DeletePortfolio(id, user.ID); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPortfolioValue handles GET /portfolios/{id}/value
func (h *Handler) GetPortfolioValue(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid portfolio id")
		return
	}

	if _, err := h.db.GetPortfolio(id, user.ID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	value, err := h.engine.PortfolioValue(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, value)
}

// GetPortfolioPositions handles GET /portfolios/{id}/positions
func (h *Handler) GetPortfolioPositions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid portfolio id")
		return
	}

	if _, err := h.db.GetPortfolio(id, user.ID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	positions, err := h.engine.StockPositions(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, positions)
}

// GetPortfolioAnalytics handles GET /portfolios/{id}/analytics
func (h *Handler) GetPortfolioAnalytics(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid portfolio id")
		return
	}

	p, err := h.db.GetPortfolio(id, user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	value, err := h.engine.PortfolioValue(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	positions, err := h.engine.StockPositions(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.PortfolioAnalytics{
		PortfolioID:   p.ID,
		PortfolioName: p.Name,
		Value:         value,
		Positions:     positions,
	})
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}
