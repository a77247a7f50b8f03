package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/server"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cart and checkout HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configFile)
		},
	}
}

func runServe(ctx context.Context, configFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, configFile, "")
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	cartSvc, cartCtrl := cart.NewModule(a.cartStore, a.logger)
	manager, checkoutCtrl := checkout.NewModule(cartSvc, a.processor, a.recorder, a.cfg.Payment, a.cfg.Processor.Timeout, a.logger)

	router := server.NewRouter(cartCtrl, checkoutCtrl, a.logger)
	srv := server.New(a.cfg.Server, a.cfg.Processor.Timeout, router, a.logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		manager.Shutdown()
		return err
	case <-quit:
		a.logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown failed", zap.Error(err))
	}
	manager.Shutdown()

	a.logger.Info("server stopped gracefully")
	return nil
}
