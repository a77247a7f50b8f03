package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type SessionService interface {
	Start(ctx context.Context) (domain.CheckoutSession, error)
	Get(id string) (domain.CheckoutSession, error)
	Submit(ctx context.Context, id string, details domain.CustomerDetails, rawPhone string) (domain.CheckoutSession, error)
	Retry(id string) (domain.CheckoutSession, error)
	Discard(id string) error
}

type Controller struct {
	sessions SessionService
	logger   *zap.Logger
}

func NewController(sessions SessionService, logger *zap.Logger) *Controller {
	return &Controller{
		sessions: sessions,
		logger:   logger,
	}
}

func (c *Controller) HandleStart(w http.ResponseWriter, r *http.Request) {
	traceID := requestTraceID(r)

	session, err := c.sessions.Start(r.Context())
	if err != nil {
		c.handleError(w, traceID, "", err)
		return
	}

	c.writeJSON(w, http.StatusCreated, newSessionResponse(traceID, session))
}

func (c *Controller) HandleGet(w http.ResponseWriter, r *http.Request) {
	traceID := requestTraceID(r)
	id := chi.URLParam(r, "sessionId")

	session, err := c.sessions.Get(id)
	if err != nil {
		c.handleError(w, traceID, id, err)
		return
	}

	c.writeJSON(w, http.StatusOK, newSessionResponse(traceID, session))
}

func (c *Controller) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	traceID := requestTraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))
	id := chi.URLParam(r, "sessionId")

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if strings.TrimSpace(req.Phone) == "" {
		req.Phone = req.Customer.Phone
	}

	if err := validateSubmitRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	session, err := c.sessions.Submit(r.Context(), id, req.Customer, req.Phone)
	if err != nil {
		c.handleError(w, traceID, id, err)
		return
	}

	c.writeJSON(w, http.StatusOK, newSessionResponse(traceID, session))
}

func (c *Controller) HandleRetry(w http.ResponseWriter, r *http.Request) {
	traceID := requestTraceID(r)
	id := chi.URLParam(r, "sessionId")

	session, err := c.sessions.Retry(id)
	if err != nil {
		c.handleError(w, traceID, id, err)
		return
	}

	c.writeJSON(w, http.StatusOK, newSessionResponse(traceID, session))
}

func (c *Controller) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	traceID := requestTraceID(r)
	id := chi.URLParam(r, "sessionId")

	if err := c.sessions.Discard(id); err != nil {
		c.handleError(w, traceID, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validateSubmitRequest checks the fields the checkout form marks as
// required. The phone number format is judged by the session itself.
func validateSubmitRequest(req SubmitRequest) error {
	var details []apperrors.ValidationDetail

	required := []struct {
		field string
		value string
	}{
		{"customer.firstName", req.Customer.FirstName},
		{"customer.lastName", req.Customer.LastName},
		{"customer.email", req.Customer.Email},
		{"customer.address", req.Customer.Address},
		{"customer.city", req.Customer.City},
		{"phone", req.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   f.field,
				Message: f.field + " is required",
			})
		}
	}

	if email := strings.TrimSpace(req.Customer.Email); email != "" && !strings.Contains(email, "@") {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customer.email",
			Message: "customer.email must be a valid email address",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *Controller) handleError(w http.ResponseWriter, traceID, sessionID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, sessionID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, sessionID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if ce, ok := apperrors.IsCheckoutError(err); ok && ce.Code == apperrors.CodeInvalidLineItem {
		c.writeErrorResponse(w, traceID, sessionID, http.StatusUnprocessableEntity, string(ce.Code), ce.Message)
		return
	}

	c.logger.Error("checkout operation failed",
		zap.String("traceId", traceID),
		zap.String("sessionId", sessionID),
		zap.Error(err),
	)
	c.writeErrorResponse(w, traceID, sessionID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *Controller) writeErrorResponse(w http.ResponseWriter, traceID, sessionID string, status int, code, message string) {
	c.writeJSON(w, status, ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Error:     code,
		Message:   message,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}

func requestTraceID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.New().String()
}
