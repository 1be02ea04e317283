package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/points-mall/cart-service/internal/cart"
	"github.com/points-mall/cart-service/internal/catalog"
	"github.com/points-mall/cart-service/internal/config"
	"github.com/points-mall/cart-service/internal/db"
	"github.com/points-mall/cart-service/internal/events"
	httpapi "github.com/points-mall/cart-service/internal/http"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("env", cfg.AppEnv).
		Bool("publish_events", cfg.PublishEvents).
		Msg("starting cart service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, log.Logger); err != nil {
			log.Fatal().Err(err).Msg("db migrate")
		}
	}

	catalogRepo := catalog.NewRepository(pool)
	store := cart.NewStore(pool, catalogRepo)
	aggregator := cart.NewAggregator(pool)

	// --- AMQP ---
	var publisher cart.CheckoutPublisher
	if cfg.PublishEvents && cfg.RabbitURL != "" {
		conn := events.MustDial(cfg.RabbitURL)
		defer conn.Close()

		pub, err := events.NewPublisher(conn, events.NewSequenceRepository(pool), events.PublisherOptions{})
		if err != nil {
			log.Fatal().Err(err).Msg("create publisher")
		}
		defer pub.Close()
		publisher = pub
	} else {
		log.Warn().Msg("event publishing disabled, checkout handoff events will not be emitted")
	}

	svc := cart.NewService(store, aggregator, publisher, log.Logger)

	// --- HTTP ---
	h := httpapi.NewHandler(svc, log.Logger)
	r := httpapi.NewRouter(h)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("fatal error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	log.Info().Msg("shutdown complete")
}
