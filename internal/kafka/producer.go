package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/fcraft/portfolio-tracker/internal/config"
	"github.com/fcraft/portfolio-tracker/internal/models"
)

// Producer publishes transaction events to the transactions topic.
type Producer struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

// NewProducer creates a Kafka producer for transaction events.
func NewProducer(cfg config.KafkaConfig, log zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TransactionsTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{
		writer: writer,
		log:    log.With().Str("component", "kafka-producer").Logger(),
	}
}

// PublishTransactionRecorded emits a TRANSACTION_RECORDED event. Messages
// are keyed by portfolio ID so a portfolio's events stay ordered.
func (p *Producer) PublishTransactionRecorded(ctx context.Context, tx *models.Transaction) error {
	event := models.TransactionEvent{
		EventType: "TRANSACTION_RECORDED",
		Source:    "portfolio-tracker",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      tx,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(tx.PortfolioID, 10)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish transaction event: %w", err)
	}

	p.log.Debug().
		Int64("portfolio_id", tx.PortfolioID).
		Str("ticker", tx.Ticker).
		Str("kind", string(tx.Kind)).
		Msg("published transaction event")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
