package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/rafflemonitor/config"
	"sjsage522/rafflemonitor/internal/crawler"
	"sjsage522/rafflemonitor/internal/fetch"
	"sjsage522/rafflemonitor/logger"
	"sjsage522/rafflemonitor/services/notifier"
	"sjsage522/rafflemonitor/services/seen"
	"sjsage522/rafflemonitor/services/worker"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("listing_url", cfg.ListingURL).
		Dur("poll_interval", cfg.PollInterval).
		Int("detail_workers", cfg.DetailWorkers).
		Str("seen_store", cfg.SeenStore).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	w, err := newWorker(cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker")
	}

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting raffle monitor")
		workerDone <- w.Start(ctx)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil && ctx.Err() == nil {
			logger.LogError("worker", err, "Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Store    seen.Store
	Notifier notifier.Notifier
	Identity fetch.Identity
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if closer, ok := s.Store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.LogError("store", err, "Failed to close seen store")
		}
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	store, err := seen.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	identity := fetch.NewIdentity()
	logger.Info("Using user agent %s", identity.UserAgent)

	return &Services{
		Store:    store,
		Notifier: notifier.New(cfg),
		Identity: identity,
	}, nil
}

// newWorker wires the fetcher and crawler for cfg around services
func newWorker(cfg *config.Config, services *Services) (*worker.Worker, error) {
	c, err := crawler.CreateCrawler(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(nil, services.Identity, cfg.FetchTimeout)

	return worker.NewWorker(
		fetcher,
		c,
		services.Store,
		services.Notifier,
		worker.OptionsFromConfig(cfg),
	), nil
}
