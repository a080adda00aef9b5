// internal/domain/tip.go
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type TipStatus string

const (
	TipStatusInitiated        TipStatus = "initiated"
	TipStatusAwaitingProvider TipStatus = "awaiting_provider"
	TipStatusSettled          TipStatus = "settled"
	TipStatusFailedInitiation TipStatus = "failed_initiation"
	TipStatusErrorInitiation  TipStatus = "error_initiation"
)

// IsTerminal reports whether a tip in this status may never change status
// again. failed_initiation means the provider definitively declined;
// error_initiation means the outcome is indeterminate and is left for manual
// reconciliation. Both are terminal for this service.
func (s TipStatus) IsTerminal() bool {
	switch s {
	case TipStatusSettled, TipStatusFailedInitiation, TipStatusErrorInitiation:
		return true
	}
	return false
}

// TipRecord is one attempt to move money from a supporter to a creator.
// Records are append-only: they are created in initiated state and mutated
// only to record the settlement outcome, never deleted.
type TipRecord struct {
	ID    string `json:"id" db:"id"`
	TxRef string `json:"tx_ref" db:"tx_ref"`

	FromUserID  string `json:"from_user_id" db:"from_user_id"`
	ToCreatorID string `json:"to_creator_id" db:"to_creator_id"`

	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PlatformFee   decimal.Decimal `json:"platform_fee" db:"platform_fee"`
	CreatorAmount decimal.Decimal `json:"creator_amount" db:"creator_amount"`
	Currency      string          `json:"currency" db:"currency"`

	Message *string `json:"message,omitempty" db:"message"`

	// Display snapshots captured at creation time. The record is a
	// point-in-time receipt; these are never re-derived.
	FromUsername    string `json:"from_username" db:"from_username"`
	ToCreatorHandle string `json:"to_creator_handle" db:"to_creator_handle"`

	Status TipStatus `json:"status" db:"status"`

	ProviderResponse json.RawMessage `json:"provider_response,omitempty" db:"provider_response"`
	ProviderError    json.RawMessage `json:"provider_error,omitempty" db:"provider_error"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	SettledAt *time.Time `json:"settled_at,omitempty" db:"settled_at"`
}

// NewTxRef generates the externally visible transaction reference. It doubles
// as the idempotency key toward the payment provider, so it must be globally
// unique.
func NewTxRef() string {
	return fmt.Sprintf("tipkesho-tip-%s", uuid.New().String())
}

// NewTipID generates a ULID for a tip record.
func NewTipID() string {
	return ulid.Make().String()
}

// SplitAmount computes the platform fee and the creator's share for a tip.
// The fee is rounded half-up to 2 decimal places once at creation time and
// never recomputed; the creator amount is the remainder, so the three values
// always sum exactly.
func SplitAmount(amount decimal.Decimal, feeRate decimal.Decimal) (platformFee, creatorAmount decimal.Decimal) {
	platformFee = amount.Mul(feeRate).Round(2)
	creatorAmount = amount.Sub(platformFee)
	return platformFee, creatorAmount
}

// FallbackHandle derives a deterministic placeholder handle for a creator
// whose directory entry cannot be resolved. Display nicety only.
func FallbackHandle(creatorID string) string {
	if len(creatorID) > 8 {
		creatorID = creatorID[:8]
	}
	return "creator-" + creatorID
}

// Kenyan mobile-money numbering: +254 then 1 or 7, then 8 digits.
var phonePattern = regexp.MustCompile(`^\+254[17]\d{8}$`)

// SendTipRequest is the normalized inbound tip request.
type SendTipRequest struct {
	ToCreatorID string          `json:"to_creator_id"`
	Amount      decimal.Decimal `json:"amount"`
	Message     *string         `json:"message,omitempty"`
	TipperPhone string          `json:"tipper_phone_number"`
	TipperEmail string          `json:"tipper_email,omitempty"`
	TipperName  string          `json:"tipper_name,omitempty"`
}

// Validate checks and normalizes the request. Pure; no network or storage
// calls. Authentication is the caller's concern, not the validator's.
func (r *SendTipRequest) Validate() error {
	if r.ToCreatorID == "" {
		return errors.New("to_creator_id is required")
	}
	if r.Amount.IsZero() || r.Amount.IsNegative() {
		return errors.New("amount must be greater than 0")
	}
	if r.TipperPhone == "" {
		return errors.New("tipper_phone_number is required")
	}
	if !phonePattern.MatchString(r.TipperPhone) {
		return fmt.Errorf("tipper_phone_number must match +254 followed by 1 or 7 and 8 digits, got %q", r.TipperPhone)
	}
	return nil
}
