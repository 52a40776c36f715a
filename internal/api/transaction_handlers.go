package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/auth"
	"github.com/fcraft/portfolio-tracker/internal/models"
	"github.com/fcraft/portfolio-tracker/internal/portfolio"
)

type transactionRequest struct {
	PortfolioID int64                  `json:"portfolio_id"`
	Ticker      string                 `json:"ticker"`
	Kind        models.TransactionKind `json:"kind"`
	Quantity    decimal.Decimal        `json:"quantity"`
	Price       decimal.Decimal        `json:"price"`
}

// CreateTransaction handles POST /transactions. Sells that exceed current
// holdings are rejected with 422 before anything is written.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	// Ownership check doubles as existence check.
	if _, err := h.db.GetPortfolio(req.PortfolioID, user.ID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	tx := &models.Transaction{
		PortfolioID: req.PortfolioID,
		Ticker:      req.Ticker,
		Kind:        req.Kind,
		Quantity:    req.Quantity,
		Price:       req.Price,
	}
	if err := h.engine.RecordTransaction(tx); err != nil {
		h.respondDomainError(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishTransactionRecorded(r.Context(), tx); err != nil {
			h.log.Warn().Err(err).Int64("transaction_id", tx.ID).Msg("failed to publish transaction event")
		}
	}

	respondJSON(w, http.StatusCreated, tx)
}

// ListTransactions handles GET /transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	txs, err := h.db.ListTransactions(user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}
	respondJSON(w, http.StatusOK, txs)
}

// GetTransaction handles GET /transactions/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid transaction id")
		return
	}

	tx, err := h.db.GetTransaction(id, user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// UpdateTransaction handles PUT /transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid transaction id")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if !req.Kind.Valid() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "kind must be buy or sell")
		return
	}
	if !req.Quantity.IsPositive() || !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "quantity and price must be positive")
		return
	}
	ticker := portfolio.NormalizeTicker(req.Ticker)
	if ticker == "" || len(ticker) > 10 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "ticker must be 1-10 characters")
		return
	}

	tx := &models.Transaction{
		ID:       id,
		Ticker:   ticker,
		Kind:     req.Kind,
		Quantity: req.Quantity,
		Price:    req.Price,
	}
	if err := h.db.UpdateTransaction(tx, user.ID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	updated, err := h.db.GetTransaction(id, user.ID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid transaction id")
		return
	}

	if err := h.db.DeleteTransaction(id, user.ID); err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
