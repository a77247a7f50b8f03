package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/pricing"
)

// Manager keeps the live checkout sessions of the process, keyed by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Orchestrator

	cart      CartStore
	processor PaymentProcessor
	recorder  TransactionRecorder
	opts      Options
	logger    *zap.Logger
	newID     func() string
}

func NewManager(
	cart CartStore,
	proc PaymentProcessor,
	recorder TransactionRecorder,
	opts Options,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		sessions:  make(map[string]*Orchestrator),
		cart:      cart,
		processor: proc,
		recorder:  recorder,
		opts:      opts,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Start opens a checkout session over the current cart. The cart is read
// once here; later cart edits do not change the session's totals.
func (m *Manager) Start(ctx context.Context) (domain.CheckoutSession, error) {
	items, err := m.cart.Load(ctx)
	if err != nil {
		m.logger.Error("failed to load cart for checkout", zap.Error(err))
		return domain.CheckoutSession{}, apperrors.NewInternalError("failed to load cart", err)
	}

	if len(items) == 0 {
		return domain.CheckoutSession{}, apperrors.NewValidationError("cart is empty",
			apperrors.ValidationDetail{Field: "items", Message: "at least one item is required"},
		)
	}

	totals, err := pricing.Compute(items)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	id := m.newID()
	orch := NewOrchestrator(id, totals, m.cart, m.processor, m.recorder, m.opts, m.logger)

	m.mu.Lock()
	m.sessions[id] = orch
	m.mu.Unlock()

	m.logger.Info("checkout session started",
		zap.String("sessionId", id),
		zap.Int("itemCount", len(items)),
		zap.String("total", totals.Total.StringFixed(2)),
	)

	return orch.Snapshot(), nil
}

func (m *Manager) Get(id string) (domain.CheckoutSession, error) {
	orch, err := m.lookup(id)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	return orch.Snapshot(), nil
}

func (m *Manager) Submit(ctx context.Context, id string, details domain.CustomerDetails, rawPhone string) (domain.CheckoutSession, error) {
	orch, err := m.lookup(id)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	return orch.Submit(ctx, details, rawPhone)
}

func (m *Manager) Retry(id string) (domain.CheckoutSession, error) {
	orch, err := m.lookup(id)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	return orch.Retry()
}

// Discard closes the session and forgets it.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	orch, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("checkout session %s not found", id))
	}

	orch.Close()
	m.logger.Info("checkout session discarded", zap.String("sessionId", id))
	return nil
}

// Shutdown closes every live session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Orchestrator)
	m.mu.Unlock()

	for _, orch := range sessions {
		orch.Close()
	}
	m.logger.Info("checkout sessions closed", zap.Int("count", len(sessions)))
}

func (m *Manager) lookup(id string) (*Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orch, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("checkout session %s not found", id))
	}
	return orch, nil
}
