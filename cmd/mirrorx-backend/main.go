package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/Chip777-coder/mirrorx-backend/pkg/api"
	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/fetch"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/metrics"
	"github.com/Chip777-coder/mirrorx-backend/pkg/normalize"
	"github.com/Chip777-coder/mirrorx-backend/pkg/scheduler"
	"github.com/Chip777-coder/mirrorx-backend/pkg/snapshot"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
	"github.com/Chip777-coder/mirrorx-backend/pkg/version"

	// Import adapters to register them
	_ "github.com/Chip777-coder/mirrorx-backend/pkg/sources/market"
	_ "github.com/Chip777-coder/mirrorx-backend/pkg/sources/oracle"
	_ "github.com/Chip777-coder/mirrorx-backend/pkg/sources/social"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("mirrorx-backend version %s\n", version.Version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting mirrorx-backend",
		"version", version.Version,
		"datasets", cfg.Datasets())

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr, cfg.Metrics.Path); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- run(ctx, cfg, logger)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("Component failed", "error", err)
			cancel()
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down gracefully...")
	<-shutdownCtx.Done()
	logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	// Build the cache store
	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build cache store: %w", err)
	}

	// Initialize adapters, grouped by dataset
	adaptersByDataset := make(map[string][]sources.Adapter)
	for i := range cfg.Adapters {
		adapterCfg := &cfg.Adapters[i]
		if !adapterCfg.Enabled {
			continue
		}

		logger.Info("Initializing adapter",
			"type", adapterCfg.Type,
			"name", adapterCfg.Name,
			"dataset", adapterCfg.Dataset)

		adapter, err := sources.Create(adapterCfg.Type, adapterCfg.Name, adapterCfg, logger)
		if err != nil {
			logger.Warn("Failed to create adapter",
				"type", adapterCfg.Type,
				"name", adapterCfg.Name,
				"error", err)
			continue
		}

		adaptersByDataset[adapter.Dataset()] = append(adaptersByDataset[adapter.Dataset()], adapter)
	}
	if len(adaptersByDataset) == 0 {
		return fmt.Errorf("no adapters available")
	}

	// Start WebSocket server if enabled
	var wsServer *api.WebSocketServer
	var publish scheduler.PublishFunc
	if cfg.Server.WebSocket.Enabled {
		wsServer = api.NewWebSocketServer(cfg.Server.WebSocket.Addr, logger)
		publish = wsServer.SendUpdate

		go func() {
			if err := wsServer.Start(ctx); err != nil {
				logger.Error("WebSocket server error", "error", err)
			}
		}()
	}

	// Start one schedule per configured refresh group
	clock := clockwork.NewRealClock()
	for i := range cfg.Schedules {
		schedCfg := &cfg.Schedules[i]

		var adapters []sources.Adapter
		normalizers := make(map[string]normalize.Func)
		for _, dataset := range schedCfg.Datasets {
			datasetAdapters := adaptersByDataset[dataset]
			if len(datasetAdapters) == 0 {
				return fmt.Errorf("schedule %s: no adapters for dataset %s", schedCfg.Name, dataset)
			}
			adapters = append(adapters, datasetAdapters...)

			contributors := make([]string, 0, len(datasetAdapters))
			for _, a := range datasetAdapters {
				contributors = append(contributors, a.Name())
			}
			normFn, err := normalize.ForDataset(dataset, contributors)
			if err != nil {
				return fmt.Errorf("schedule %s: %w", schedCfg.Name, err)
			}
			normalizers[dataset] = normFn
		}

		fetcher := fetch.New(fetch.Options{
			AdapterTimeout: schedCfg.AdapterTimeout.ToDuration(),
			CycleDeadline:  schedCfg.CycleDeadline.ToDuration(),
			MaxConcurrent:  schedCfg.MaxConcurrent,
		}, logger)

		sched, err := scheduler.New(scheduler.Spec{
			Name:        schedCfg.Name,
			Interval:    schedCfg.Interval.ToDuration(),
			Adapters:    adapters,
			Normalizers: normalizers,
			TTLFor:      cfg.Cache.TTLFor,
			Store:       store,
			Fetcher:     fetcher,
			Clock:       clock,
			Publish:     publish,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("schedule %s: %w", schedCfg.Name, err)
		}

		go sched.Run(ctx)
	}

	// Start HTTP server
	reader := snapshot.NewReader(store, clock, logger)
	server := api.NewServer(cfg.Server.HTTP.Addr, reader, cfg.Datasets(), logger)
	if cfg.Server.HTTP.TLS.Enabled {
		server.SetTLS(cfg.Server.HTTP.TLS.Cert, cfg.Server.HTTP.TLS.Key)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		if wsServer != nil {
			wsServer.Stop()
		}
	}()

	return server.Start()
}

// buildStore creates the configured cache backend.
func buildStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}

		logger.Info("Using redis cache backend", "addr", cfg.Cache.Redis.Addr)
		return cache.NewRedisStore(client, cfg.Cache.Redis.Expiry.ToDuration()), nil
	default:
		logger.Info("Using in-memory cache backend")
		return cache.NewMemoryStore(nil), nil
	}
}
