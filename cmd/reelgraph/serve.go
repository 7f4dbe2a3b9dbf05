package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelgraph/internal/config"
	"reelgraph/internal/handler"
	"reelgraph/internal/hub"
	"reelgraph/internal/loader"
	"reelgraph/internal/metrics"
	"reelgraph/internal/repository/sqlite"
	"reelgraph/internal/service"
	"reelgraph/internal/telemetry"
	"reelgraph/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the graph over HTTP, SSE and WebSocket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "HTTP listen address")
	flags.String("dataset", "", "dataset file to load at startup (.json, .yaml, .yml)")
	flags.String("dataset-name", "", "archived dataset to load at startup when --dataset is not set")
	flags.Bool("watch", false, "reload --dataset when the file changes")
	flags.String("otlp", "", "OTLP/HTTP trace endpoint")
	flags.Bool("metrics", true, "expose Prometheus metrics")
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg)
	logger.Info("Starting reelgraph", "version", version, "addr", cfg.Server.Addr)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, version, cfg.Telemetry.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown error", "error", err)
		}
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open dataset archive: %w", err)
	}
	defer repo.Close()

	eventBus := service.NewEventBus()
	svc := service.NewGraphService(eventBus,
		service.WithRepository(repo),
		service.WithMetrics(m),
		service.WithLogger(logger),
	)

	if err := seed(ctx, svc, cfg); err != nil {
		return err
	}

	sseHub := hub.New(logger, m)
	go sseHub.Run(ctx)

	events := make(chan service.Event, 256)
	eventBus.Subscribe(events)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-events:
				sseHub.Broadcast(e)
			}
		}
	}()

	if cfg.Dataset.Watch {
		w := watcher.New(cfg.Dataset.Path, watcher.Reload(svc, logger), logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Dataset watcher stopped", "error", err)
			}
		}()
	}

	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	mux := handler.Routes(
		handler.NewGraphHandler(svc),
		handler.NewGestureHandler(svc, m, logger),
		sseHub,
		metricsHandler,
		cfg.Metrics.Path,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Chain(mux, handler.Recover, handler.CORS, handler.Logger(logger)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped")
	return nil
}

// seed loads the startup graph: the dataset file when configured, otherwise
// the named archived dataset, otherwise nothing
func seed(ctx context.Context, svc *service.GraphService, cfg *config.Config) error {
	logger := slog.Default()
	switch {
	case cfg.Dataset.Path != "":
		fragment, err := loader.LoadFile(cfg.Dataset.Path)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
		svc.Replace(ctx, cfg.Dataset.Path, fragment)
	case cfg.Dataset.Name != "":
		if _, err := svc.LoadDataset(ctx, cfg.Dataset.Name); err != nil {
			return err
		}
	default:
		logger.Info("No dataset configured, starting with an empty graph")
	}
	return nil
}
