package cart

import "go.uber.org/zap"

func NewModule(store Store, logger *zap.Logger) (*Service, *Controller) {
	svc := NewService(store, logger)
	return svc, NewController(svc, logger)
}
