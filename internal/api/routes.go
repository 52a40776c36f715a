package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fcraft/portfolio-tracker/internal/auth"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, authmw *auth.Middleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument)

	// Operational endpoints
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/ws", handler.ServeWS).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", handler.Register).Methods("POST")
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")

	// Everything else requires a bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(authmw.Require)

	protected.HandleFunc("/users/me", handler.CurrentUser).Methods("GET")

	protected.HandleFunc("/portfolios", handler.CreatePortfolio).Methods("POST")
	protected.HandleFunc("/portfolios", handler.ListPortfolios).Methods("GET")
	protected.HandleFunc("/portfolios/{id}", handler.GetPortfolio).Methods("GET")
	protected.HandleFunc("/portfolios/{id}", handler.UpdatePortfolio).Methods("PUT")
	protected.HandleFunc("/portfolios/{id}", handler.DeletePortfolio).Methods("DELETE")
	protected.HandleFunc("/portfolios/{id}/value", handler.GetPortfolioValue).Methods("GET")
	protected.HandleFunc("/portfolios/{id}/positions", handler.GetPortfolioPositions).Methods("GET")
	protected.HandleFunc("/portfolios/{id}/analytics", handler.GetPortfolioAnalytics).Methods("GET")

	protected.HandleFunc("/transactions", handler.CreateTransaction).Methods("POST")
	protected.HandleFunc("/transactions", handler.ListTransactions).Methods("GET")
	protected.HandleFunc("/transactions/{id}", handler.GetTransaction).Methods("GET")
	protected.HandleFunc("/transactions/{id}", handler.UpdateTransaction).Methods("PUT")
	protected.HandleFunc("/transactions/{id}", handler.DeleteTransaction).Methods("DELETE")

	protected.HandleFunc("/stocks/search", handler.SearchStocks).Methods("GET")
	protected.HandleFunc("/stocks/{ticker}/price", handler.GetStockPrice).Methods("GET")

	return r
}
