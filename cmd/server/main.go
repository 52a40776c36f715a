package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"github.com/fcraft/portfolio-tracker/internal/api"
	"github.com/fcraft/portfolio-tracker/internal/auth"
	"github.com/fcraft/portfolio-tracker/internal/config"
	"github.com/fcraft/portfolio-tracker/internal/database"
	"github.com/fcraft/portfolio-tracker/internal/kafka"
	"github.com/fcraft/portfolio-tracker/internal/logger"
	"github.com/fcraft/portfolio-tracker/internal/marketdata"
	"github.com/fcraft/portfolio-tracker/internal/portfolio"
	"github.com/fcraft/portfolio-tracker/internal/redis"
	"github.com/fcraft/portfolio-tracker/internal/ws"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	// Connect to database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := runMigrations(cfg.Database.ConnectionString(), log); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}
	log.Info().Msg("connected to PostgreSQL")

	// Connect to Redis; the cache is optional
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Str("addr", cfg.Redis.Address()).Msg("connected to Redis")
	}

	// Market data: provider client behind a read-through cache
	quoteClient := marketdata.NewClient(cfg.MarketData, log)
	var cache marketdata.PriceCache
	if redisClient != nil {
		cache = redisClient
	}
	prices := marketdata.NewCachedSource(quoteClient, cache, cfg.MarketData.CacheTTL, log)

	// Position accounting and valuation engine
	engine := portfolio.NewService(db, prices, cfg.MarketData.RequestTimeout, log)

	// Kafka producer for transaction events
	producer := kafka.NewProducer(cfg.Kafka, log)
	defer producer.Close()
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("kafka producer initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Websocket hub for live price updates
	hub := ws.NewHub(prices, cfg.MarketData.BroadcastInterval, log)
	go hub.Run(ctx)

	// Consume market data price events into the cache and the hub
	pricesConsumer := kafka.NewPricesConsumer(cfg.Kafka, prices, hub, log)
	go func() {
		if err := pricesConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("prices consumer error")
		}
	}()

	// Auth
	tokens := auth.NewTokenIssuer(cfg.Auth)
	authmw := auth.NewMiddleware(tokens, db)

	// HTTP handler and routes
	handler := api.NewHandler(api.Deps{
		DB:       db,
		Engine:   engine,
		Producer: producer,
		Redis:    redisClient,
		Prices:   prices,
		Search:   quoteClient,
		Tokens:   tokens,
		Hub:      hub,
		Log:      log,
	})
	router := api.SetupRoutes(handler, authmw)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the consumer and the hub
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if err := pricesConsumer.Close(); err != nil {
		log.Error().Err(err).Msg("error closing prices consumer")
	}

	log.Info().Msg("server stopped")
}

func runMigrations(databaseURL string, log zerolog.Logger) error {
	m, err := migrate.New("file://./db/migrations", databaseURL)
	if err != nil {
		return err
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("no migrations to apply, database is up to date")
		return nil
	}
	return err
}
