package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jroosing/mailprobe/internal/api"
	"github.com/jroosing/mailprobe/internal/config"
	"github.com/jroosing/mailprobe/internal/database"
	"github.com/jroosing/mailprobe/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to TOML configuration file (or set MAILPROBE_CONFIG)")
		host       = flag.String("host", "", "Override API bind host")
		port       = flag.Int("port", 0, "Override API bind port")
		dbPath     = flag.String("db", "", "Override transfer archive path (\"-\" disables it)")
		noSystem   = flag.Bool("no-system", false, "Ignore resolv.conf, dotfiles and the environment")
		jsonLogs   = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: config.ResolveConfigPath(*configPath),
		NoSystem:   *noSystem,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *host != "" {
		cfg.API.Host = *host
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if *debug || cfg.Resolver.Debug {
		cfg.Logging.Level = "DEBUG"
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})
	logger.Info("mailprobe starting",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"nameservers", cfg.Resolver.Nameservers,
		"database", cfg.Database.Path,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "server exited with error: %v\n", err)
		os.Exit(1)
	}
}

// run serves the API until ctx is canceled or the listener fails.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.API.Enabled {
		return errors.New("api is disabled; nothing to serve")
	}

	var db *database.DB
	if cfg.Database.Path != "" && cfg.Database.Path != "-" {
		var err error
		db, err = database.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	srv := api.New(cfg, db, logger)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", srv.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
