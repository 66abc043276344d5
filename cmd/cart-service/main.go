package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cafe-cart/internal/config"
	carthttp "github.com/nikolayk812/cafe-cart/internal/http"
	"github.com/nikolayk812/cafe-cart/internal/logger"
	"github.com/nikolayk812/cafe-cart/internal/lookup"
	"github.com/nikolayk812/cafe-cart/internal/migrations"
	"github.com/nikolayk812/cafe-cart/internal/port"
	"github.com/nikolayk812/cafe-cart/internal/repository"
	"github.com/nikolayk812/cafe-cart/internal/service"
	"go.uber.org/zap"
)

const serviceName = "cart-service"

func main() {
	if err := run(); err != nil {
		log.Fatalf("%s: %v", serviceName, err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	l, err := logger.New(logger.Options{AppEnv: cfg.AppEnv, Level: cfg.LogLevel, Service: serviceName})
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer closeRepo()

	lk, err := newLookup(cfg, l)
	if err != nil {
		return err
	}

	svc := service.New(repo, lk, service.Config{
		LookupTimeout: cfg.ProductLookupTimeout,
		Logger:        l,
	})

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      carthttp.NewRouter(svc, l),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		l.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("srv.ListenAndServe: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn("graceful shutdown failed", zap.Error(err))
	}

	return nil
}

func newRepository(ctx context.Context, cfg config.Config, l *zap.Logger) (port.CartRepository, func(), error) {
	if cfg.Store == config.StoreMemory {
		l.Warn("using in-memory cart store, data is lost on restart")
		return repository.NewMemoryCart(), func() {}, nil
	}

	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.DatabaseDSN, l); err != nil {
			return nil, nil, fmt.Errorf("migrations.Up: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return repository.NewCart(pool), pool.Close, nil
}

func newLookup(cfg config.Config, l *zap.Logger) (port.ProductLookup, error) {
	if cfg.ProductLookup == config.LookupStub {
		l.Info("using stub product lookup")
		return lookup.NewStub(), nil
	}

	lk, err := lookup.NewHTTP(cfg.ProductServiceURL, &http.Client{}, l)
	if err != nil {
		return nil, fmt.Errorf("lookup.NewHTTP: %w", err)
	}

	return lk, nil
}
