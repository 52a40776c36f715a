package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/portfolio"
)

// PriceUpdate is the message pushed to subscribers when a ticker moves.
type PriceUpdate struct {
	Type      string `json:"type"`
	Ticker    string `json:"ticker"`
	Price     string `json:"price"`
	Timestamp string `json:"timestamp"`
}

// Hub routes price updates to websocket clients by ticker subscription.
// Updates arrive two ways: pushed via BroadcastPrice (the market data
// consumer) and pulled by the hub's own polling loop.
type Hub struct {
	mu sync.RWMutex
	// ticker -> subscribed clients
	subscriptions map[string]map[*Client]struct{}
	// client -> its tickers, for cleanup on disconnect
	clients map[*Client]map[string]struct{}

	prices   portfolio.PriceSource
	interval time.Duration
	log      zerolog.Logger
}

// NewHub creates an empty hub. A nil price source or non-positive interval
// disables polling; pushed updates still work.
func NewHub(prices portfolio.PriceSource, interval time.Duration, log zerolog.Logger) *Hub {
	return &Hub{
		subscriptions: make(map[string]map[*Client]struct{}),
		clients:       make(map[*Client]map[string]struct{}),
		prices:        prices,
		interval:      interval,
		log:           log.With().Str("component", "ws-hub").Logger(),
	}
}

// Run polls prices for subscribed tickers until the context is cancelled,
// then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	if h.prices != nil && h.interval > 0 {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
	poll:
		for {
			select {
			case <-ctx.Done():
				break poll
			case <-ticker.C:
				h.pollPrices(ctx)
			}
		}
	} else {
		<-ctx.Done()
	}

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Disconnect(c)
		c.close()
	}
	h.log.Info().Int("clients", len(clients)).Msg("hub shut down")
}

// pollPrices fetches a fresh quote for every ticker that has at least one
// subscriber. A failed lookup becomes an error message to that ticker's
// subscribers; the loop never stops.
func (h *Hub) pollPrices(ctx context.Context) {
	h.mu.RLock()
	tickers := make([]string, 0, len(h.subscriptions))
	for t := range h.subscriptions {
		tickers = append(tickers, t)
	}
	h.mu.RUnlock()

	for _, ticker := range tickers {
		price, err := h.prices.CurrentPrice(ctx, ticker)
		if err != nil {
			h.log.Warn().Err(err).Str("ticker", ticker).Msg("price poll failed")
			h.broadcastError(ticker, "no price available for "+ticker)
			continue
		}
		h.BroadcastPrice(ticker, price)
	}
}

func (h *Hub) broadcastError(ticker, message string) {
	payload, err := json.Marshal(errorMessage{Type: "error", Message: message})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subscriptions[ticker] {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Subscribe registers a client for updates on a ticker.
func (h *Hub) Subscribe(c *Client, ticker string) {
	ticker = portfolio.NormalizeTicker(ticker)
	if ticker == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		h.clients[c] = make(map[string]struct{})
	}
	h.clients[c][ticker] = struct{}{}

	if _, ok := h.subscriptions[ticker]; !ok {
		h.subscriptions[ticker] = make(map[*Client]struct{})
	}
	h.subscriptions[ticker][c] = struct{}{}

	h.log.Debug().Str("ticker", ticker).Msg("client subscribed")
}

// Unsubscribe removes one ticker subscription for a client.
func (h *Hub) Unsubscribe(c *Client, ticker string) {
	ticker = portfolio.NormalizeTicker(ticker)

	h.mu.Lock()
	defer h.mu.Unlock()

	if tickers, ok := h.clients[c]; ok {
		delete(tickers, ticker)
	}
	if subs, ok := h.subscriptions[ticker]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.subscriptions, ticker)
		}
	}
}

// Disconnect removes a client and all of its subscriptions.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ticker := range h.clients[c] {
		if subs, ok := h.subscriptions[ticker]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.subscriptions, ticker)
			}
		}
	}
	delete(h.clients, c)
}

// BroadcastPrice pushes a price update to every client subscribed to the
// ticker. Slow clients are skipped rather than blocking the hub.
func (h *Hub) BroadcastPrice(ticker string, price decimal.Decimal) {
	ticker = portfolio.NormalizeTicker(ticker)

	payload, err := json.Marshal(PriceUpdate{
		Type:      "price_update",
		Ticker:    ticker,
		Price:     price.StringFixed(2),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.subscriptions[ticker] {
		select {
		case c.send <- payload:
		default:
			h.log.Warn().Str("ticker", ticker).Msg("dropping update for slow client")
		}
	}
}

// SubscriberCount reports how many clients follow a ticker.
func (h *Hub) SubscriberCount(ticker string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[portfolio.NormalizeTicker(ticker)])
}
