package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type CartService interface {
	Snapshot(ctx context.Context) ([]domain.LineItem, domain.OrderTotals, error)
	AddItem(ctx context.Context, item domain.LineItem) ([]domain.LineItem, error)
	UpdateQuantity(ctx context.Context, id int, quantity int) ([]domain.LineItem, error)
	RemoveItem(ctx context.Context, id int) ([]domain.LineItem, error)
	Clear(ctx context.Context) error
}

type Controller struct {
	service CartService
	logger  *zap.Logger
}

func NewController(service CartService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	c.writeCart(w, r, http.StatusOK)
}

func (c *Controller) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	item := domain.LineItem{
		ID:        req.ID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Quantity:  req.Quantity,
		Category:  req.Category,
		ImageRef:  req.Image,
	}

	if _, err := c.service.AddItem(r.Context(), item); err != nil {
		c.handleError(w, err)
		return
	}

	c.writeCart(w, r, http.StatusOK)
}

func (c *Controller) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := c.parseItemID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if _, err := c.service.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		c.handleError(w, err)
		return
	}

	c.writeCart(w, r, http.StatusOK)
}

func (c *Controller) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := c.parseItemID(w, r)
	if !ok {
		return
	}

	if _, err := c.service.RemoveItem(r.Context(), id); err != nil {
		c.handleError(w, err)
		return
	}

	c.writeCart(w, r, http.StatusOK)
}

func (c *Controller) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Clear(r.Context()); err != nil {
		c.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) parseItemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "itemId"))
	if err != nil || id <= 0 {
		c.writeValidationError(w, "invalid itemId", apperrors.ValidationDetail{
			Field:   "itemId",
			Message: "itemId must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func (c *Controller) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	items, totals, err := c.service.Snapshot(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}
	c.writeJSON(w, status, newCartResponse(items, totals))
}

func (c *Controller) handleError(w http.ResponseWriter, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "NOT_FOUND",
			"message": err.Error(),
		})
		return
	}

	if ce, ok := apperrors.IsCheckoutError(err); ok && ce.Code == apperrors.CodeInvalidLineItem {
		c.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":   string(ce.Code),
			"message": ce.Message,
		})
		return
	}

	c.logger.Error("cart operation failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
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
