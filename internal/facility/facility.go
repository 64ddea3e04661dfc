package facility

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the referenced facility does not exist.
	ErrNotFound = errors.New("facility not found")

	// ErrFrozen is returned when a write is attempted against a facility that
	// failed a consistency check and is awaiting manual reconciliation.
	ErrFrozen = errors.New("facility is frozen")

	// ErrInvalidTotal is returned when a facility is created with a
	// non-positive committed amount.
	ErrInvalidTotal = errors.New("committed total must be positive")
)

// Facility is a line of credit or term loan with a committed total and a
// denormalized current available balance. The balance is only ever written
// through the ledger's posting path; this package owns everything else.
type Facility struct {
	ID           uuid.UUID
	Name         string
	OpenedOn     time.Time
	ClosesOn     *time.Time
	Total        decimal.Decimal
	Balance      decimal.Decimal
	InterestRate *decimal.Decimal
	Revolving    bool
	OpeningFee   *decimal.Decimal
	Frozen       bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
