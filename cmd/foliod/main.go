// Foliod serves the folio portfolio API: public content, the contact form,
// the chat assistant and the admin API.
//
// Configuration is read from ~/.config/folio/config.yaml (or -config) and
// FOLIO_* environment variables. See internal/config for details.
//
// Usage:
//
//	# Start the server
//	foliod
//
//	# Use another config file and port
//	FOLIO_SERVER_HTTP_PORT=9000 foliod -config /etc/folio/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/config"
	httpserver "github.com/fyrsmithlabs/folio/internal/http"
	"github.com/fyrsmithlabs/folio/internal/knowledge"
	"github.com/fyrsmithlabs/folio/internal/logging"
	"github.com/fyrsmithlabs/folio/internal/services"
	"github.com/fyrsmithlabs/folio/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  foliod [-config path]   Start the server\n")
			fmt.Fprintf(os.Stderr, "  foliod version          Show version information\n")
			os.Exit(1)
		}
	}

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("foliod by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires every service, serves HTTP and blocks until ctx is cancelled,
// then drains in-flight requests within the shutdown timeout.
func run(ctx context.Context, cfg *config.Config) error {
	logs, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logs.Sync()
	}()
	logger := logs.Underlying()

	if version != "dev" {
		cfg.Telemetry.ServiceVersion = version
	}
	tel, err := telemetry.New(ctx, cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting foliod",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Address()),
		zap.Bool("telemetry", tel.IsEnabled()),
	)
	logger.Debug("auth configured",
		logging.Secret("jwt_secret", cfg.Auth.JWTSecret),
		zap.Bool("password_login", cfg.Auth.AdminPassword.IsSet()),
	)

	reg, err := services.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Warn("closing services failed", zap.Error(err))
		}
	}()

	srv, err := httpserver.NewServer(cfg, reg.HTTPDeps(version), logger)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if dir := cfg.Knowledge.InboxDir; dir != "" {
		watcher, err := knowledge.NewWatcher(dir, reg.Knowledge(), logger)
		if err != nil {
			return fmt.Errorf("failed to watch inbox: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("inbox watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.Server.ShutdownTimeout.Duration()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
