package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context) ([]*Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error
}

// Allocator keeps an allocation transaction in lifecycle lockstep with its
// payment. Implemented by the allocation service.
type Allocator interface {
	Allocate(ctx context.Context, p *Payment) (*ledger.Transaction, error)
	Deallocate(ctx context.Context, paymentID uuid.UUID) (*ledger.Transaction, error)
}

type Service struct {
	repo      Repository
	allocator Allocator
}

func NewService(repo Repository, allocator Allocator) *Service {
	return &Service{repo: repo, allocator: allocator}
}

type CreateParams struct {
	Amount            decimal.Decimal
	Date              time.Time
	TargetFacilityID  *uuid.UUID
	AllocationPercent *decimal.Decimal
	Description       string
}

// Create persists the payment, then asks the allocator to post its facility
// share. An allocation failure never blocks payment creation: the payment is
// kept and the failure is surfaced loudly in the log and in the returned
// transaction being nil.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Payment, *ledger.Transaction, error) {
	if !params.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	p := &Payment{
		Amount:            params.Amount,
		Date:              date,
		TargetFacilityID:  params.TargetFacilityID,
		AllocationPercent: params.AllocationPercent,
		Description:       params.Description,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, nil, err
	}

	tx, err := s.allocator.Allocate(ctx, p)
	if err != nil {
		slog.Error("payment created but allocation failed",
			"payment_id", p.ID,
			"error", err,
		)

		return p, nil, nil
	}

	return p, tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Payment, error) {
	return s.repo.ListPayments(ctx)
}

// Delete reverses the payment's allocation before removing the payment row,
// so the ledger never holds a transaction pointing at a dead payment. If the
// reversal fails the payment is kept, otherwise the reversal would be
// unreachable later.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.allocator.Deallocate(ctx, id); err != nil {
		return fmt.Errorf("deallocating payment %s: %w", id, err)
	}

	return s.repo.DeletePayment(ctx, id)
}
