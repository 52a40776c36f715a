package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "portfolio_tracker", cfg.Database.DBName)
	assert.Equal(t, "portfolio.transactions", cfg.Kafka.TransactionsTopic)
	assert.Equal(t, "marketdata.prices", cfg.Kafka.PricesTopic)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.MarketData.RequestTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("KAFKA_BROKERS", "kafka1:9092, kafka2:9092")
	t.Setenv("JWT_TOKEN_TTL", "2h")
	t.Setenv("LOG_PRETTY", "true")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Log.Pretty)
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: "5432",
		User: "u", Password: "p", DBName: "db", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", d.ConnectionString())
}

func TestRedisAddress(t *testing.T) {
	r := RedisConfig{Host: "localhost", Port: "6379"}
	assert.Equal(t, "localhost:6379", r.Address())
}
