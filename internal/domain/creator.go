// internal/domain/creator.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatorAggregate holds the running totals denormalized onto a creator's
// profile for fast display. Mutated only through the ledger's atomic
// increment, never overwritten wholesale; it must always equal the sum over
// that creator's settled tips.
type CreatorAggregate struct {
	CreatorID           string          `json:"creator_id" db:"creator_id"`
	TotalTips           int64           `json:"total_tips" db:"total_tips"`
	TotalAmountReceived decimal.Decimal `json:"total_amount_received" db:"total_amount_received"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// CreatorProfile is the read-only slice of the user directory this service
// consumes: enough to snapshot a display handle onto a tip record.
type CreatorProfile struct {
	CreatorID string `json:"creator_id" db:"creator_id"`
	Handle    string `json:"handle" db:"handle"`
}
