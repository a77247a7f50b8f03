package checkout

import (
	"time"

	"go.uber.org/zap"

	"storefront/internal/checkout/controller"
	"storefront/internal/config"
)

func NewModule(
	cart CartStore,
	proc PaymentProcessor,
	recorder TransactionRecorder,
	cfg config.PaymentConfig,
	processorTimeout time.Duration,
	logger *zap.Logger,
) (*Manager, *controller.Controller) {
	manager := NewManager(cart, proc, recorder, Options{
		PollInterval:    cfg.PollInterval,
		InitiateTimeout: processorTimeout,
		MaxPollAttempts: cfg.MaxPollAttempts,
	}, logger)

	return manager, controller.NewController(manager, logger)
}
