package processor

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

const StatusPending = "pending"

type InitiateRequest struct {
	PhoneNumber     string                 `json:"phone_number"`
	Amount          int64                  `json:"amount"`
	CustomerDetails domain.CustomerDetails `json:"customer_details"`
}

type InitiateResponse struct {
	Status            string `json:"status"`
	CheckoutRequestID string `json:"checkout_request_id"`
	Message           string `json:"message,omitempty"`
}

type statusRequest struct {
	CheckoutRequestID string `json:"checkout_request_id"`
}

type statusEnvelope struct {
	Status json.RawMessage `json:"status"`
	Error  string          `json:"error,omitempty"`
}

type statusPayload struct {
	ResultCode ResultCode `json:"ResultCode"`
	ResultDesc string     `json:"ResultDesc"`
}

// ResultCode is the processor's settlement code. It arrives either as a JSON
// number or as a string; both are kept in their decimal string form.
type ResultCode struct {
	Value string
	// Present is false when the field was missing or null.
	Present bool
	// Valid is false when the field was present but not a number or string.
	Valid bool
}

func (c *ResultCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	c.Present = true

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil && num != "" {
		c.Value = canonicalNumber(num)
		c.Valid = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Value = strings.TrimSpace(s)
		c.Valid = c.Value != ""
		return nil
	}

	// Any other shape is kept as malformed instead of failing the decode.
	return nil
}

func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

// StatusResult is the part of a status-check response the checkout flow acts on.
type StatusResult struct {
	Code        ResultCode
	Description string
}

// Determined reports whether the processor returned a usable result code.
func (r StatusResult) Determined() bool {
	return r.Code.Present && r.Code.Valid
}
