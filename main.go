package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carwatcher/config"
	"carwatcher/internal/crawler"
	"carwatcher/logger"
	"carwatcher/services/cache"
	"carwatcher/services/notifier"
	"carwatcher/services/publisher"
	"carwatcher/services/state"
	"carwatcher/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("make", cfg.Make).
		Str("model", cfg.Model).
		Str("postcode", cfg.Postcode).
		Msg("Starting watch run")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the run on shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	autotrader := crawler.NewAutoTraderCrawler(cfg, services.Cache)

	w := worker.NewWorker(ctx, autotrader, services.Store, services.Notifier, services.Publisher)

	report, err := w.Run()
	if err != nil {
		log.Error().Err(err).Msg("Watch run failed")
		services.Cleanup()
		os.Exit(1)
	}

	log.Info().
		Int("previously_seen", report.PreviouslySeen).
		Int("current", report.Current).
		Int("new", report.New).
		Int("notified", report.Notified).
		Int("published", report.Published).
		Bool("state_saved", report.StateSaved).
		Msg("Watch run finished")
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     state.Store
	Notifier  notifier.Notifier
	Publisher publisher.Publisher
}

// Cleanup closes every service that holds a connection
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices wires the run's collaborators from the configuration
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{
		Store:    state.NewFileStore(cfg.StateFile),
		Notifier: notifier.NewTelegramNotifier(cfg),
	}

	// Cooldown cache: memcached when configured, in-process otherwise
	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using memcache at %s for the rate-limit cooldown", cfg.MemcacheAddr)
	} else {
		services.Cache = cache.NewMemoryService()
		logger.Info("Using the in-process rate-limit cooldown")
	}

	// Stream publishing is optional
	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(ctx, cfg)
		logger.Info("Publishing new listings to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services
}
