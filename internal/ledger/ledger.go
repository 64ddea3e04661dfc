package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a facility transaction.
type Kind string

const (
	KindDraw              Kind = "draw"
	KindCapitalPaydown    Kind = "capital_paydown"
	KindInterest          Kind = "interest"
	KindFee               Kind = "fee"
	KindPaymentAllocation Kind = "payment_allocation"
)

var (
	// ErrNotFound is returned when the referenced transaction does not exist.
	ErrNotFound = errors.New("transaction not found")

	// ErrInvalidAmount is returned for a zero posting amount.
	ErrInvalidAmount = errors.New("amount must be non-zero")

	// ErrInsufficientFunds is returned when a draw would push a non-revolving
	// facility's available balance below zero.
	ErrInsufficientFunds = errors.New("insufficient available balance")

	// ErrConsistency signals that a facility's stored balance disagrees with
	// its transaction history. Writes against the facility are refused until
	// an operator reconciles it.
	ErrConsistency = errors.New("facility balance inconsistent with transaction history")
)

// Transaction is a signed movement against a facility. A positive amount is a
// draw and reduces the available balance; a negative amount is a paydown and
// restores it. Amount always holds the delta that was actually applied, after
// any over-payment clamping, so reversing a transaction is exact.
type Transaction struct {
	ID          uuid.UUID
	FacilityID  uuid.UUID
	PaymentID   *uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Kind        Kind
	Description string
	Fee         *decimal.Decimal
	CreatedAt   time.Time
}
