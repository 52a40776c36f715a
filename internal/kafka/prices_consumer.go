package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/fcraft/portfolio-tracker/internal/config"
	"github.com/fcraft/portfolio-tracker/internal/models"
)

// PriceRefresher receives consumed prices, typically the quote cache.
type PriceRefresher interface {
	Refresh(ctx context.Context, ticker string, price decimal.Decimal) error
}

// PriceBroadcaster fans a price update out to live subscribers.
type PriceBroadcaster interface {
	BroadcastPrice(ticker string, price decimal.Decimal)
}

// PricesConsumer consumes market data price events and pushes them into
// the cache and the websocket hub.
type PricesConsumer struct {
	reader      *kafka.Reader
	refresher   PriceRefresher
	broadcaster PriceBroadcaster
	log         zerolog.Logger
}

// NewPricesConsumer creates a Kafka consumer for the prices topic. The
// broadcaster may be nil when no live subscribers exist.
func NewPricesConsumer(cfg config.KafkaConfig, refresher PriceRefresher, broadcaster PriceBroadcaster, log zerolog.Logger) *PricesConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.PricesTopic,
		GroupID:        cfg.ConsumerGroup + "-prices",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &PricesConsumer{
		reader:      reader,
		refresher:   refresher,
		broadcaster: broadcaster,
		log:         log.With().Str("component", "prices-consumer").Logger(),
	}
}

// Start begins consuming messages until the context is cancelled.
func (c *PricesConsumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.reader.Config().Topic).Msg("starting prices consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("prices consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.log.Error().Err(err).Msg("failed to read price message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.Error().Err(err).Msg("failed to process price message")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message.
func (c *PricesConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.PriceEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price event: %w", err)
	}

	if event.EventType != "PRICE_UPDATED" {
		c.log.Debug().Str("event_type", event.EventType).Msg("ignoring unknown price event type")
		return nil
	}

	ticker := event.Data.Ticker
	price, err := decimal.NewFromString(event.Data.Price)
	if err != nil || !price.IsPositive() {
		return fmt.Errorf("price event for %s has invalid price %q", ticker, event.Data.Price)
	}

	if c.refresher != nil {
		if err := c.refresher.Refresh(ctx, ticker, price); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("failed to refresh cached price")
		}
	}
	if c.broadcaster != nil {
		c.broadcaster.BroadcastPrice(ticker, price)
	}

	c.log.Debug().Str("ticker", ticker).Str("price", price.String()).Msg("applied price update")
	return nil
}

// Close closes the Kafka consumer.
func (c *PricesConsumer) Close() error {
	return c.reader.Close()
}
