package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/phone"
	"storefront/internal/pricing"
	"storefront/internal/processor"
)

const (
	MessagePaymentCancelled = "Payment was cancelled by user"
	MessagePaymentFailed    = "Payment failed. Please try again."

	DefaultPollInterval    = 5 * time.Second
	DefaultInitiateTimeout = 30 * time.Second

	sideEffectTimeout = 10 * time.Second
)

type Options struct {
	PollInterval time.Duration
	// InitiateTimeout bounds the initiation call. The call does not end when
	// the submitting caller goes away.
	InitiateTimeout time.Duration
	// MaxPollAttempts bounds the number of status checks of one pending
	// payment. Zero polls until a terminal code arrives.
	MaxPollAttempts int
	// OnChange receives a snapshot after every state change. It is called
	// without the session lock held and must not call Close.
	OnChange func(domain.CheckoutSession)
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.InitiateTimeout <= 0 {
		o.InitiateTimeout = DefaultInitiateTimeout
	}
	return o
}

// Orchestrator owns the checkout state machine of one session:
// form -> pending -> success | error, and error -> form on retry.
type Orchestrator struct {
	mu      sync.Mutex
	session domain.CheckoutSession

	cart      CartStore
	processor PaymentProcessor
	recorder  TransactionRecorder
	opts      Options
	logger    *zap.Logger
	now       func() time.Time

	submitting  bool
	closed      bool
	cartCleared bool
	epoch       uint64
	cancelPoll  context.CancelFunc
	wg          sync.WaitGroup
}

func NewOrchestrator(
	id string,
	totals domain.OrderTotals,
	cart CartStore,
	proc PaymentProcessor,
	recorder TransactionRecorder,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	now := time.Now().UTC()
	return &Orchestrator{
		session: domain.CheckoutSession{
			ID:               id,
			Totals:           totals,
			AmountMinorUnits: pricing.MinorUnits(totals.Total),
			State:            domain.PaymentStateForm,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		cart:      cart,
		processor: proc,
		recorder:  recorder,
		opts:      opts.withDefaults(),
		logger:    logger.With(zap.String("sessionId", id)),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (o *Orchestrator) Snapshot() domain.CheckoutSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Submit validates the phone number and asks the processor to initiate the
// charge. Processor failures end in the error state and are reported through
// the returned snapshot; only misuse of the session is returned as an error.
func (o *Orchestrator) Submit(ctx context.Context, details domain.CustomerDetails, rawPhone string) (domain.CheckoutSession, error) {
	o.mu.Lock()
	if err := o.checkSubmittableLocked(); err != nil {
		snap := o.session
		o.mu.Unlock()
		return snap, err
	}

	o.session.Customer = details.WithDefaults()
	o.session.PhoneRaw = rawPhone

	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		o.session.PhoneNormalized = ""
		o.failLocked(err, apperrors.CodeInvalidPhoneNumber, phone.InvalidNumberMessage)
		snap := o.session
		o.mu.Unlock()
		o.logger.Info("phone number rejected", zap.String("phone", rawPhone))
		o.notify(snap)
		return snap, nil
	}
	o.session.PhoneNormalized = normalized

	req := processor.InitiateRequest{
		PhoneNumber:     normalized,
		Amount:          o.session.AmountMinorUnits,
		CustomerDetails: o.session.Customer,
	}
	o.submitting = true
	o.mu.Unlock()

	o.logger.Info("initiating payment", zap.String("phone", normalized), zap.Int64("amount", req.Amount))
	// Detached from the caller: a charge sent to the phone must still be tracked.
	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.InitiateTimeout)
	resp, err := o.processor.Initiate(initCtx, req)
	cancel()

	o.mu.Lock()
	o.submitting = false
	if o.closed {
		if err == nil {
			o.session.CheckoutRequestID = resp.CheckoutRequestID
			o.session.LastMessage = resp.Message
		}
		snap := o.session
		o.mu.Unlock()
		if err == nil {
			o.logger.Warn("payment accepted after session closed", zap.String("checkoutRequestId", snap.CheckoutRequestID))
			o.record(ctx, snap, true)
		}
		return snap, apperrors.NewConflictError("checkout session is closed")
	}

	if err != nil {
		o.failLocked(err, apperrors.CodeInitiationRejected, processor.MessageInitiationFailed)
		snap := o.session
		o.mu.Unlock()
		o.logger.Warn("payment initiation failed", zap.Error(err))
		o.notify(snap)
		return snap, nil
	}

	o.session.CheckoutRequestID = resp.CheckoutRequestID
	o.session.LastMessage = resp.Message
	o.session.StatusMessage = domain.StatusMessageWaiting
	o.transitionLocked(domain.PaymentStatePending)
	o.startPollLocked()
	snap := o.session
	o.mu.Unlock()

	o.logger.Info("payment pending", zap.String("checkoutRequestId", snap.CheckoutRequestID))
	o.record(ctx, snap, true)
	o.notify(snap)
	return snap, nil
}

// Retry returns a failed session to the form, keeping the customer details.
func (o *Orchestrator) Retry() (domain.CheckoutSession, error) {
	o.mu.Lock()
	if o.closed {
		snap := o.session
		o.mu.Unlock()
		return snap, apperrors.NewConflictError("checkout session is closed")
	}
	if o.session.State != domain.PaymentStateError {
		snap := o.session
		o.mu.Unlock()
		return snap, apperrors.NewConflictError("checkout session is not in error state")
	}

	o.session.ErrorCode = ""
	o.session.LastResultCode = ""
	o.session.LastMessage = ""
	o.session.StatusMessage = ""
	o.session.CheckoutRequestID = ""
	o.session.PollAttempts = 0
	o.transitionLocked(domain.PaymentStateForm)
	snap := o.session
	o.mu.Unlock()

	o.logger.Info("checkout reset for retry")
	o.notify(snap)
	return snap, nil
}

// Close stops polling and waits for the poller to exit. It is safe to call
// more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.stopPollLocked()
	o.mu.Unlock()

	o.wg.Wait()
}

func (o *Orchestrator) checkSubmittableLocked() error {
	if o.closed {
		return apperrors.NewConflictError("checkout session is closed")
	}
	if o.submitting {
		return apperrors.NewConflictError("payment submission already in progress")
	}
	if o.session.State != domain.PaymentStateForm {
		return apperrors.NewConflictError("checkout session is not accepting submissions")
	}
	return nil
}

func (o *Orchestrator) startPollLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	o.epoch++
	o.cancelPoll = cancel

	o.wg.Add(1)
	go o.poll(ctx, o.epoch, o.session.CheckoutRequestID)
}

func (o *Orchestrator) stopPollLocked() {
	o.epoch++
	if o.cancelPoll != nil {
		o.cancelPoll()
		o.cancelPoll = nil
	}
}

func (o *Orchestrator) poll(ctx context.Context, epoch uint64, checkoutRequestID string) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		result, err := o.processor.CheckStatus(ctx, checkoutRequestID)
		if ctx.Err() != nil {
			return
		}
		if !o.applyStatus(epoch, result, err) {
			return
		}
	}
}

// applyStatus folds one status check into the session. It reports whether
// polling should continue. Results from a stale poll run are dropped.
func (o *Orchestrator) applyStatus(epoch uint64, result *processor.StatusResult, checkErr error) bool {
	o.mu.Lock()
	if o.closed || epoch != o.epoch || o.session.State != domain.PaymentStatePending {
		o.mu.Unlock()
		return false
	}

	o.session.PollAttempts++
	o.session.UpdatedAt = o.now()

	if checkErr != nil {
		o.failLocked(checkErr, apperrors.CodeStatusCheckUnavailable, processor.MessageStatusUnavailable)
		o.stopPollLocked()
		snap := o.session
		o.mu.Unlock()
		o.logger.Warn("status check failed", zap.String("checkoutRequestId", snap.CheckoutRequestID), zap.Error(checkErr))
		o.finish(snap, false)
		return false
	}

	if result == nil {
		result = &processor.StatusResult{}
	}
	outcome := processor.Interpret(*result)
	if result.Determined() {
		o.session.LastResultCode = result.Code.Value
	}

	switch outcome {
	case processor.OutcomeConfirmed:
		o.session.StatusMessage = domain.StatusMessageConfirmed
		o.session.LastMessage = result.Description
		o.transitionLocked(domain.PaymentStateSuccess)
		o.stopPollLocked()
		clearCart := !o.cartCleared
		o.cartCleared = true
		snap := o.session
		o.mu.Unlock()
		o.logger.Info("payment confirmed", zap.String("checkoutRequestId", snap.CheckoutRequestID), zap.Int("pollAttempts", snap.PollAttempts))
		o.finish(snap, clearCart)
		return false

	case processor.OutcomeCancelled:
		o.failLocked(nil, apperrors.CodePaymentCancelled, MessagePaymentCancelled)
		o.stopPollLocked()
		snap := o.session
		o.mu.Unlock()
		o.logger.Info("payment cancelled by customer", zap.String("checkoutRequestId", snap.CheckoutRequestID))
		o.finish(snap, false)
		return false

	case processor.OutcomeFailed:
		msg := result.Description
		if msg == "" {
			msg = MessagePaymentFailed
		}
		o.failLocked(nil, apperrors.CodePaymentFailed, msg)
		o.stopPollLocked()
		snap := o.session
		o.mu.Unlock()
		o.logger.Info("payment failed", zap.String("checkoutRequestId", snap.CheckoutRequestID), zap.String("resultCode", snap.LastResultCode), zap.String("resultDesc", msg))
		o.finish(snap, false)
		return false
	}

	o.session.StatusMessage = domain.StatusMessageWaiting
	if o.opts.MaxPollAttempts > 0 && o.session.PollAttempts >= o.opts.MaxPollAttempts {
		o.failLocked(nil, apperrors.CodeStatusCheckUnavailable, processor.MessageStatusUnavailable)
		o.stopPollLocked()
		snap := o.session
		o.mu.Unlock()
		o.logger.Warn("poll budget exhausted", zap.Int("pollAttempts", snap.PollAttempts))
		o.finish(snap, false)
		return false
	}

	snap := o.session
	o.mu.Unlock()
	o.logger.Debug("payment still pending", zap.String("outcome", outcome.String()), zap.Int("pollAttempts", snap.PollAttempts))
	o.notify(snap)
	return true
}

// failLocked moves the session to error. A CheckoutError carried by err
// supplies the code and message; otherwise the given fallbacks are used.
func (o *Orchestrator) failLocked(err error, code apperrors.Code, fallback string) {
	o.session.ErrorCode = code
	o.session.LastMessage = fallback
	if ce, ok := apperrors.IsCheckoutError(err); ok {
		o.session.ErrorCode = ce.Code
		if ce.Message != "" {
			o.session.LastMessage = ce.Message
		}
	}
	o.session.StatusMessage = ""
	o.transitionLocked(domain.PaymentStateError)
}

func (o *Orchestrator) transitionLocked(next domain.PaymentState) {
	if !o.session.State.CanTransition(next) {
		o.logger.Error("illegal checkout transition",
			zap.String("from", string(o.session.State)),
			zap.String("to", string(next)),
		)
		return
	}
	o.session.State = next
	o.session.UpdatedAt = o.now()
}

// finish runs the side effects of a terminal state outside the lock.
func (o *Orchestrator) finish(snap domain.CheckoutSession, clearCart bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if clearCart {
		if err := o.cart.Clear(ctx); err != nil {
			o.logger.Error("failed to clear cart after payment", zap.Error(err))
		}
	}
	o.record(ctx, snap, false)
	o.notify(snap)
}

func (o *Orchestrator) record(ctx context.Context, snap domain.CheckoutSession, initiated bool) {
	if o.recorder == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	var err error
	if initiated {
		err = o.recorder.RecordInitiated(ctx, snap)
	} else if snap.CheckoutRequestID != "" {
		err = o.recorder.RecordOutcome(ctx, snap)
	}
	if err != nil {
		o.logger.Error("failed to record transaction", zap.Error(err))
	}
}

func (o *Orchestrator) notify(snap domain.CheckoutSession) {
	if o.opts.OnChange != nil {
		o.opts.OnChange(snap)
	}
}
