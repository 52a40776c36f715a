package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fcraft/portfolio-tracker/internal/auth"
	"github.com/fcraft/portfolio-tracker/internal/database"
	"github.com/fcraft/portfolio-tracker/internal/kafka"
	"github.com/fcraft/portfolio-tracker/internal/marketdata"
	"github.com/fcraft/portfolio-tracker/internal/portfolio"
	"github.com/fcraft/portfolio-tracker/internal/redis"
	"github.com/fcraft/portfolio-tracker/internal/ws"
)

// SymbolSearcher looks up tickers by keyword.
type SymbolSearcher interface {
	SearchSymbols(ctx context.Context, query string) ([]marketdata.SymbolMatch, error)
}

// Deps bundles everything the HTTP handlers need. Producer, redis, prices,
// search and hub may be nil; the affected endpoints degrade instead of
// panicking.
type Deps struct {
	DB       *database.DB
	Engine   *portfolio.Service
	Producer *kafka.Producer
	Redis    *redis.Client
	Prices   portfolio.PriceSource
	Search   SymbolSearcher
	Tokens   *auth.TokenIssuer
	Hub      *ws.Hub
	Log      zerolog.Logger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       *database.DB
	engine   *portfolio.Service
	producer *kafka.Producer
	redis    *redis.Client
	prices   portfolio.PriceSource
	search   SymbolSearcher
	tokens   *auth.TokenIssuer
	hub      *ws.Hub
	log      zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(deps Deps) *Handler {
	return &Handler{
		db:       deps.DB,
		engine:   deps.Engine,
		producer: deps.Producer,
		redis:    deps.Redis,
		prices:   deps.Prices,
		search:   deps.Search,
		tokens:   deps.Tokens,
		hub:      deps.Hub,
		log:      deps.Log.With().Str("component", "api").Logger(),
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  map[string]string{},
	}
	services := health["services"].(map[string]string)
	allHealthy := true

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			services["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["postgres"] = "healthy"
		}
	} else {
		services["postgres"] = "not configured"
		allHealthy = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	if h.producer != nil {
		services["kafka"] = "configured"
	} else {
		services["kafka"] = "not configured"
	}

	if !allHealthy {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

// ServeWS handles GET /ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "live updates not configured")
		return
	}
	ws.ServeWS(h.hub, h.log, w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// respondDomainError maps engine and storage errors onto the API envelope.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var holdErr *portfolio.InsufficientHoldingsError
	switch {
	case errors.As(err, &holdErr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]any{
				"code":      "INSUFFICIENT_HOLDINGS",
				"message":   holdErr.Error(),
				"ticker":    holdErr.Ticker,
				"available": holdErr.Available,
				"requested": holdErr.Requested.String(),
			},
		})
	case errors.Is(err, portfolio.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, database.ErrDuplicate):
		respondError(w, http.StatusConflict, "DUPLICATE", err.Error())
	default:
		h.log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
