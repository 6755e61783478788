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
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/Sanket3107/Rupaya/internal/api"
	"github.com/Sanket3107/Rupaya/internal/auth"
	"github.com/Sanket3107/Rupaya/internal/config"
	"github.com/Sanket3107/Rupaya/internal/metrics"
	"github.com/Sanket3107/Rupaya/internal/service"
	"github.com/Sanket3107/Rupaya/internal/storage/sqlstore"
	"github.com/Sanket3107/Rupaya/pkg/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (*sqlstore.Store, error) {
	if cfg.DBDriver == sqlstore.DriverSQLite && cfg.DBDSN == "" {
		return sqlstore.New(cfg.DBPath)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.DBDriver)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	resolver := auth.NewResolver(jwtManager, store)

	svc := api.Services{
		Auth:     service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, resolver, store, logger),
		Groups:   service.NewGroupLifecycle(store, logger),
		Bills:    service.NewBillLedger(store, logger),
		Balances: service.NewBalanceAggregator(store, logger),
	}
	server := api.NewServer(svc, resolver, store, metrics.New(), logger)

	// h2c serves HTTP/2 without TLS alongside HTTP/1.1.
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(server.Handler(cfg.RequestTimeout), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.Addr(), "url", fmt.Sprintf("http://localhost%s", cfg.Addr()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
