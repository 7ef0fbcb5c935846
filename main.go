package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dalfonso89/currency-converter/internal/api"
	"github.com/dalfonso89/currency-converter/internal/cli"
	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/history"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/platform"
	"github.com/dalfonso89/currency-converter/internal/ratelimit"
	"github.com/dalfonso89/currency-converter/internal/service"
)

func main() {
	port := flag.String("port", "", "port for the serve command (overrides PORT)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [interactive|serve]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Create a shutdown context that works across platforms
	ctx, stop := platform.NewShutdownContext(context.Background())
	defer stop()

	switch command := flag.Arg(0); command {
	case "", "interactive":
		err = runInteractive(ctx, cfg)
	case "serve":
		err = runServer(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		stop()
		log.Fatal(err)
	}
}

// components holds everything both front ends share
type components struct {
	source    *service.HTTPRateSource
	store     *history.Store
	converter *service.Converter
}

func newComponents(cfg *config.Config, logger *logger.Logger) components {
	store := history.NewStore(cfg.HistoryFile, cfg.HistoryLimit, logger)
	store.Load()

	source := service.NewHTTPRateSource(cfg.RateSource, logger)

	return components{
		source:    source,
		store:     store,
		converter: service.NewConverter(source, store, logger),
	}
}

func runInteractive(ctx context.Context, cfg *config.Config) error {
	logger := logger.New(interactiveLevel(cfg.LogLevel))
	app := newComponents(cfg, logger)

	menu := cli.New(app.converter, app.store, logger, os.Stdin, os.Stdout, cli.DetectOptions(os.Stdout))
	return menu.Run(ctx)
}

// interactiveLevel keeps routine log lines out of the menu unless debugging
func interactiveLevel(level string) string {
	if level == "debug" {
		return level
	}
	return "error"
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := logger.NewWithOutput(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	app := newComponents(cfg, logger)

	var rateLimiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		rateLimiter = ratelimit.NewLimiter(cfg, logger)
		defer rateLimiter.Stop()
	}

	// Initialize HTTP handlers
	handlers := api.NewHandlers(api.HandlerConfig{
		Logger:      logger,
		Converter:   app.converter,
		History:     app.store,
		Health:      app.source,
		RateLimiter: rateLimiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RateSource.Timeout + 15*time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting currency converter on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
