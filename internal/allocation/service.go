// Package allocation derives a facility paydown from an incoming payment and
// keeps the two in lifecycle lockstep. It never touches balances itself; all
// mutation is delegated to the ledger's posting path.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerline/internal/metrics"
	"github.com/MrJamesThe3rd/ledgerline/internal/payment"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=allocation
type Ledger interface {
	Post(ctx context.Context, params ledger.PostParams) (*ledger.Transaction, error)
	Reverse(ctx context.Context, txID uuid.UUID) (*facility.Facility, error)
	FindAllocation(ctx context.Context, paymentID uuid.UUID) (*ledger.Transaction, error)
}

type Service struct {
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

var hundred = decimal.NewFromInt(100)

// Allocate posts the payment's configured share against its target facility
// as a paydown. A payment with no target facility or with a percentage
// outside (0, 100] requests no allocation; that is a nil result, not an
// error.
func (s *Service) Allocate(ctx context.Context, p *payment.Payment) (*ledger.Transaction, error) {
	if p.TargetFacilityID == nil || p.AllocationPercent == nil {
		return nil, nil
	}

	percent := *p.AllocationPercent
	if !percent.IsPositive() || percent.GreaterThan(hundred) {
		return nil, nil
	}

	amount := p.Amount.Mul(percent).Div(hundred)

	tx, err := s.ledger.Post(ctx, ledger.PostParams{
		FacilityID:  *p.TargetFacilityID,
		Amount:      amount.Neg(),
		Kind:        ledger.KindPaymentAllocation,
		Description: fmt.Sprintf("Allocation of %s%% of payment %s", percent, p.ID),
		Date:        p.Date,
		PaymentID:   &p.ID,
	})
	if err != nil {
		slog.Error("allocation posting failed",
			"payment_id", p.ID,
			"facility_id", *p.TargetFacilityID,
			"amount", amount,
			"error", err,
		)
		metrics.AllocationFailures.Inc()

		return nil, fmt.Errorf("allocating payment %s: %w", p.ID, err)
	}

	return tx, nil
}

// Deallocate reverses the allocation transaction referencing the payment, if
// any. Callers invoke it before removing the payment row; the stored
// transaction amount is authoritative, so nothing is read from the payment.
func (s *Service) Deallocate(ctx context.Context, paymentID uuid.UUID) (*ledger.Transaction, error) {
	tx, err := s.ledger.FindAllocation(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding allocation for payment %s: %w", paymentID, err)
	}

	if _, err := s.ledger.Reverse(ctx, tx.ID); err != nil {
		return nil, fmt.Errorf("reversing allocation %s: %w", tx.ID, err)
	}

	return tx, nil
}
