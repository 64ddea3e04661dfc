package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the referenced payment does not exist.
	ErrNotFound = errors.New("payment not found")

	// ErrInvalidAmount is returned for a non-positive payment amount.
	ErrInvalidAmount = errors.New("payment amount must be positive")
)

// Payment is an incoming client payment. When TargetFacilityID and
// AllocationPercent are both set, that share of the amount is posted against
// the facility as a paydown at creation time.
type Payment struct {
	ID                uuid.UUID
	Amount            decimal.Decimal
	Date              time.Time
	TargetFacilityID  *uuid.UUID
	AllocationPercent *decimal.Decimal
	Description       string
	CreatedAt         time.Time
}
