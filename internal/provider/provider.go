// internal/provider/provider.go
package provider

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PaymentProvider initiates a mobile-money charge with the external provider.
// Implementations make exactly one provider call per request and never retry:
// a blind retry of a mobile-money push risks double-charging, so retries are
// an operator decision.
type PaymentProvider interface {
	// GetName returns the provider name
	GetName() string

	// InitiateCharge submits the charge. A non-nil ChargeResult means the
	// provider answered: Success reflects its verdict. A *CallError means
	// the call itself could not be completed and the outcome is
	// indeterminate.
	InitiateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}

// ChargeRequest is everything the provider needs to push a charge to the
// supporter's phone. TxRef is the idempotency key.
type ChargeRequest struct {
	TxRef         string
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	CustomerPhone string
	CustomerName  string
	Meta          ChargeMeta
}

// ChargeMeta links the provider-side transaction back to the internal ledger.
type ChargeMeta struct {
	TipID       string
	FromUserID  string
	ToCreatorID string
}

type ChargeResult struct {
	Success bool
	Message string
	// Raw is the provider's response body verbatim, persisted on the tip
	// record for support and debugging.
	Raw json.RawMessage
}

// CallError is returned when the provider call failed outright (network
// error, timeout, non-2xx). Money may or may not have moved; the caller must
// record the tip as error_initiation, not failed_initiation.
type CallError struct {
	Message string
	Raw     json.RawMessage
	Err     error
}

func (e *CallError) Error() string {
	if e.Message != "" {
		return "provider call failed: " + e.Message
	}
	if e.Err != nil {
		return "provider call failed: " + e.Err.Error()
	}
	return "provider call failed"
}

func (e *CallError) Unwrap() error { return e.Err }
