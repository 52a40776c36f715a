package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fcraft/portfolio-tracker/internal/portfolio"
)

// GetStockPrice handles GET /stocks/{ticker}/price
func (h *Handler) GetStockPrice(w http.ResponseWriter, r *http.Request) {
	if h.prices == nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "market data not configured")
		return
	}

	ticker := portfolio.NormalizeTicker(mux.Vars(r)["ticker"])
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "ticker is required")
		return
	}

	price, err := h.prices.CurrentPrice(r.Context(), ticker)
	if err != nil {
		respondError(w, http.StatusBadGateway, "PRICE_UNAVAILABLE", "no price available for "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"ticker": ticker,
		"price":  price.StringFixed(2),
	})
}

// SearchStocks handles GET /stocks/search?q=
func (h *Handler) SearchStocks(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "market data not configured")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "query parameter q is required")
		return
	}

	matches, err := h.search.SearchSymbols(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusBadGateway, "PRICE_UNAVAILABLE", "symbol search failed")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}
