package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/cart/repository"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/redis"
	"storefront/internal/infrastructure/sqlite"
	"storefront/internal/infrastructure/telemetry"
	"storefront/internal/ledger"
	"storefront/internal/processor"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	cartStore cart.Store
	processor *processor.Client
	recorder  checkout.TransactionRecorder

	closers []func(ctx context.Context) error
}

func newApp(ctx context.Context, configFile string, logFormat string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &app{cfg: cfg, logger: zapLogger}

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdownTracer)

	if err := a.openCartStore(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	if err := a.openLedger(); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.processor = processor.NewClient(cfg.Processor, zapLogger)
	return a, nil
}

func (a *app) openCartStore(ctx context.Context) error {
	switch a.cfg.Cart.Backend {
	case config.CartBackendMemory:
		a.cartStore = repository.NewMemoryStore()

	case config.CartBackendRedis:
		client, err := redis.NewClient(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		a.cartStore = repository.NewRedisStore(client, a.cfg.Cart.Key)

	default:
		db, err := sqlite.Open(a.cfg.Cart.SQLitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		store, err := repository.NewSQLiteStore(ctx, db, a.cfg.Cart.Key)
		if err != nil {
			return err
		}
		a.cartStore = store
	}

	a.logger.Info("cart store ready", zap.String("backend", a.cfg.Cart.Backend), zap.String("key", a.cfg.Cart.Key))
	return nil
}

func (a *app) openLedger() error {
	if !a.cfg.Ledger.Enabled {
		return nil
	}

	db, err := mysql.NewConnection(a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to ledger database: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	a.logger.Info("ledger database connected")

	a.recorder = ledger.NewModule(db, a.cfg.Ledger, a.logger)
	return nil
}

func (a *app) checkoutOptions() checkout.Options {
	return checkout.Options{
		PollInterval:    a.cfg.Payment.PollInterval,
		InitiateTimeout: a.cfg.Processor.Timeout,
		MaxPollAttempts: a.cfg.Payment.MaxPollAttempts,
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = a.logger.Sync()
	return firstErr
}
