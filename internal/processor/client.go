// Package processor talks to the mobile-money payment backend over its two
// JSON contracts: initiate a charge, and check the charge's status.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/internal/config"
	apperrors "storefront/internal/errors"
)

const (
	initiatePath = "/api/payment/"
	statusPath   = "/api/status/"

	maxResponseBytes = 1 << 20
)

const (
	MessageInitiationFailed   = "Failed to initiate payment"
	MessageUnexpectedResponse = "Unexpected response from server"
	MessageStatusUnavailable  = "Unable to verify payment status. Please check your payment history."
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewClient(cfg config.ProcessorConfig, logger *zap.Logger) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}, logger)
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		tracer:     otel.Tracer("storefront/processor"),
	}
}

// Initiate asks the processor to push a charge to the customer's phone. Any
// outcome other than an accepted "pending" reply is returned as an
// INITIATION_REJECTED CheckoutError whose message prefers the processor's own.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	ctx, span := c.tracer.Start(ctx, "processor.initiate", trace.WithAttributes(
		attribute.Int64("payment.amount_minor", req.Amount),
	))
	defer span.End()

	status, body, err := c.post(ctx, initiatePath, req)
	if err != nil {
		c.logger.Warn("initiate request failed", zap.Error(err))
		return nil, c.fail(span, apperrors.NewCheckoutError(apperrors.CodeInitiationRejected, MessageInitiationFailed, err))
	}

	var resp InitiateResponse
	decodeErr := json.Unmarshal(body, &resp)

	if status < 200 || status > 299 {
		msg := resp.Message
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", status)
		}
		c.logger.Warn("initiate rejected", zap.Int("httpStatus", status), zap.String("message", msg))
		return nil, c.fail(span, apperrors.NewCheckoutError(apperrors.CodeInitiationRejected, msg, nil))
	}

	if decodeErr != nil {
		c.logger.Warn("initiate returned non-JSON body", zap.Error(decodeErr))
		return nil, c.fail(span, apperrors.NewCheckoutError(apperrors.CodeInitiationRejected, MessageUnexpectedResponse, decodeErr))
	}

	if resp.Status != StatusPending || resp.CheckoutRequestID == "" {
		msg := resp.Message
		if msg == "" {
			msg = MessageUnexpectedResponse
		}
		c.logger.Warn("initiate not accepted", zap.String("status", resp.Status), zap.String("message", msg))
		return nil, c.fail(span, apperrors.NewCheckoutError(apperrors.CodeInitiationRejected, msg, nil))
	}

	span.SetAttributes(attribute.String("payment.checkout_request_id", resp.CheckoutRequestID))
	return &resp, nil
}

// CheckStatus queries the settlement state of checkoutRequestID. Transport
// failures, non-2xx replies and bodies that are not JSON are returned as
// STATUS_CHECK_UNAVAILABLE. A reply without a usable ResultCode is not an
// error; the returned result is simply undetermined.
func (c *Client) CheckStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error) {
	ctx, span := c.tracer.Start(ctx, "processor.check_status", trace.WithAttributes(
		attribute.String("payment.checkout_request_id", checkoutRequestID),
	))
	defer span.End()

	status, body, err := c.post(ctx, statusPath, statusRequest{CheckoutRequestID: checkoutRequestID})
	if err != nil {
		return nil, c.fail(span, apperrors.NewCheckoutError(apperrors.CodeStatusCheckUnavailable, MessageStatusUnavailable, err))
	}

	if status < 200 || status > 299 {
		return nil, c.fail(span, apperrors.NewCheckoutError(
			apperrors.CodeStatusCheckUnavailable,
			MessageStatusUnavailable,
			fmt.Errorf("status check returned HTTP %d", status),
		))
	}

	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, c.fail(span, apperrors.NewCheckoutError(
			apperrors.CodeStatusCheckUnavailable,
			MessageStatusUnavailable,
			fmt.Errorf("decoding status response: %w", err),
		))
	}

	result := &StatusResult{}
	var payload statusPayload
	if len(env.Status) > 0 && json.Unmarshal(env.Status, &payload) == nil {
		result.Code = payload.ResultCode
		result.Description = payload.ResultDesc
	}

	span.SetAttributes(attribute.String("payment.result_code", result.Code.Value))
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	c.logger.Debug("processor call",
		zap.String("path", path),
		zap.String("requestId", requestID),
		zap.Int("httpStatus", resp.StatusCode),
	)

	return resp.StatusCode, body, nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
