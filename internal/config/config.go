package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Kafka      KafkaConfig
	Redis      RedisConfig
	Auth       AuthConfig
	MarketData MarketDataConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka/Redpanda configuration
type KafkaConfig struct {
	Brokers           []string
	TransactionsTopic string
	PricesTopic       string
	ConsumerGroup     string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig holds JWT signing configuration
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// MarketDataConfig holds the external quote provider configuration
type MarketDataConfig struct {
	APIKey            string
	BaseURL           string
	RequestTimeout    time.Duration
	CacheTTL          time.Duration
	BroadcastInterval time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from the environment. A local .env file is
// applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "postgres"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "tracker"),
			Password: getEnv("DB_PASSWORD", "tracker"),
			DBName:   getEnv("DB_NAME", "portfolio_tracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:           parseBrokers(getEnv("KAFKA_BROKERS", "localhost:19092")),
			TransactionsTopic: getEnv("KAFKA_TRANSACTIONS_TOPIC", "portfolio.transactions"),
			PricesTopic:       getEnv("KAFKA_PRICES_TOPIC", "marketdata.prices"),
			ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "portfolio-tracker"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		Auth: AuthConfig{
			Secret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL: getDuration("JWT_TOKEN_TTL", 30*time.Minute),
		},
		MarketData: MarketDataConfig{
			APIKey:            getEnv("MARKETDATA_API_KEY", ""),
			BaseURL:           getEnv("MARKETDATA_BASE_URL", "https://www.alphavantage.co/query"),
			RequestTimeout:    getDuration("MARKETDATA_TIMEOUT", 5*time.Second),
			CacheTTL:          getDuration("MARKETDATA_CACHE_TTL", 60*time.Second),
			BroadcastInterval: getDuration("MARKETDATA_BROADCAST_INTERVAL", 15*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getBool("LOG_PRETTY", false),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
