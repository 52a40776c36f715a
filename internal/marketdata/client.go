package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/config"
	"github.com/fcraft/portfolio-tracker/internal/portfolio"
)

// ErrPriceUnavailable is returned when the quote provider cannot supply a
// usable price: timeouts, rate limits, unknown tickers, malformed payloads.
var ErrPriceUnavailable = errors.New("price unavailable")

// Client queries the Alpha Vantage GLOBAL_QUOTE endpoint.
type Client struct {
	apiKey  string
	baseURL string
	cli     *http.Client
	log     zerolog.Logger
}

// SymbolMatch is one result from a symbol search.
type SymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// NewClient creates the quote client. The configured timeout bounds every
// request; the valuation engine adds its own per-lookup deadline on top.
func NewClient(cfg config.MarketDataConfig, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		cli:     &http.Client{Timeout: cfg.RequestTimeout},
		log:     log.With().Str("component", "marketdata").Logger(),
	}
}

// CurrentPrice fetches the latest quoted price for a ticker.
func (c *Client) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	ticker = portfolio.NormalizeTicker(ticker)
	if ticker == "" {
		return decimal.Zero, fmt.Errorf("%w: empty ticker", ErrPriceUnavailable)
	}

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", ticker)
	params.Set("apikey", c.apiKey)

	payload, err := c.perform(ctx, params)
	if err != nil {
		return decimal.Zero, err
	}

	quote, ok := payload["Global Quote"].(map[string]any)
	if !ok || len(quote) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no quote for %s", ErrPriceUnavailable, ticker)
	}
	priceStr, _ := quote["05. price"].(string)
	price, err := decimal.NewFromString(priceStr)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-numeric price for %s", ErrPriceUnavailable, ticker)
	}

	c.log.Debug().Str("ticker", ticker).Str("price", price.String()).Msg("fetched quote")
	return price, nil
}

// SearchSymbols looks up tickers matching a keyword.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error) {
	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", query)
	params.Set("apikey", c.apiKey)

	payload, err := c.perform(ctx, params)
	if err != nil {
		return nil, err
	}

	raw, ok := payload["bestMatches"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: search results missing", ErrPriceUnavailable)
	}

	matches := make([]SymbolMatch, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		symbol, _ := m["1. symbol"].(string)
		name, _ := m["2. name"].(string)
		region, _ := m["4. region"].(string)
		if symbol != "" {
			matches = append(matches, SymbolMatch{Symbol: symbol, Name: name, Region: region})
		}
	}
	return matches, nil
}

func (c *Client) perform(ctx context.Context, params url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	req.Header.Set("User-Agent", "portfolio-tracker/1.0")

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrPriceUnavailable, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrPriceUnavailable, err)
	}

	// Provider signals errors and throttling inside a 200 body.
	if msg, ok := payload["Error Message"].(string); ok {
		return nil, fmt.Errorf("%w: %s", ErrPriceUnavailable, msg)
	}
	if _, ok := payload["Note"]; ok {
		return nil, fmt.Errorf("%w: rate limited", ErrPriceUnavailable)
	}
	if _, ok := payload["Information"]; ok {
		return nil, fmt.Errorf("%w: rate limited", ErrPriceUnavailable)
	}

	return payload, nil
}
