package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	// Begin opens a posting unit with the facility row locked for update.
	Begin(ctx context.Context, facilityID uuid.UUID) (PostingTx, error)

	// BeginForTransaction opens a posting unit with the transaction loaded and
	// its owning facility row locked for update.
	BeginForTransaction(ctx context.Context, txID uuid.UUID) (PostingTx, error)

	GetFacility(ctx context.Context, id uuid.UUID) (*facility.Facility, error)
	ListTransactions(ctx context.Context, facilityID uuid.UUID, skip, limit int) ([]*Transaction, error)
	ListByKind(ctx context.Context, kind Kind) ([]*Transaction, error)
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Transaction, error)
	SumAmounts(ctx context.Context, facilityID uuid.UUID) (decimal.Decimal, error)
}

// PostingTx is a single atomic unit against the ledger store. The balance
// update and the transaction insert/delete either both commit or neither does.
type PostingTx interface {
	Facility() *facility.Facility
	Transaction() *Transaction
	InsertTransaction(ctx context.Context, tx *Transaction) error
	UpdateBalance(ctx context.Context, balance decimal.Decimal) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	Commit() error
	Rollback() error
}

// Service is the transaction processor: the only path by which a transaction
// may affect a facility's available balance.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type PostParams struct {
	FacilityID  uuid.UUID
	Amount      decimal.Decimal
	Kind        Kind
	Description string
	Date        time.Time
	PaymentID   *uuid.UUID
	Fee         *decimal.Decimal
}

// Post applies a signed amount against a facility as one atomic unit.
//
// For non-revolving facilities a draw that would push the balance below zero
// fails with ErrInsufficientFunds, and a paydown that would lift the balance
// above the committed total is clamped to the total. The transaction row
// stores the effective (post-clamp) amount, so the balance stays derivable
// from history and a later reversal restores it exactly.
//
// Revolving facilities carry no floor and no cap; draws and paydowns cycle
// freely. Posting past a facility's closing date is allowed: back-dated
// corrections are legitimate, and callers that care can warn.
func (s *Service) Post(ctx context.Context, params PostParams) (*Transaction, error) {
	if params.Amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	ptx, err := s.repo.Begin(ctx, params.FacilityID)
	if err != nil {
		return nil, err
	}
	defer ptx.Rollback()

	fac := ptx.Facility()
	if fac.Frozen {
		return nil, facility.ErrFrozen
	}

	newBalance := fac.Balance.Sub(params.Amount)
	effective := params.Amount

	if !fac.Revolving {
		if params.Amount.IsPositive() && newBalance.IsNegative() {
			return nil, ErrInsufficientFunds
		}

		if params.Amount.IsNegative() && newBalance.GreaterThan(fac.Total) {
			excess := newBalance.Sub(fac.Total)
			newBalance = fac.Total
			effective = fac.Balance.Sub(newBalance)

			slog.Warn("over-payment clamped to committed total",
				"facility_id", fac.ID,
				"requested", params.Amount,
				"applied", effective,
				"discarded", excess,
			)
			metrics.OverpaymentClamps.Inc()
		}
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	tx := &Transaction{
		FacilityID:  fac.ID,
		PaymentID:   params.PaymentID,
		Date:        date,
		Amount:      effective,
		Kind:        params.Kind,
		Description: params.Description,
		Fee:         params.Fee,
	}

	if err := ptx.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("inserting transaction: %w", err)
	}

	if err := ptx.UpdateBalance(ctx, newBalance); err != nil {
		if errors.Is(err, ErrConsistency) {
			slog.Error("balance update lost the locked facility row", "facility_id", fac.ID)
		}

		return nil, fmt.Errorf("updating balance: %w", err)
	}

	if err := ptx.Commit(); err != nil {
		return nil, fmt.Errorf("committing posting: %w", err)
	}

	metrics.PostedTransactions.WithLabelValues(string(params.Kind)).Inc()

	return tx, nil
}

// Reverse re-applies a transaction's stored amount with the opposite sign and
// deletes the row, as one atomic unit. Used by payment deallocation and by the
// reconciliation auditor.
func (s *Service) Reverse(ctx context.Context, txID uuid.UUID) (*facility.Facility, error) {
	ptx, err := s.repo.BeginForTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	defer ptx.Rollback()

	fac := ptx.Facility()
	if fac.Frozen {
		return nil, facility.ErrFrozen
	}

	tx := ptx.Transaction()
	newBalance := fac.Balance.Add(tx.Amount)

	if err := ptx.DeleteTransaction(ctx, tx.ID); err != nil {
		return nil, fmt.Errorf("deleting transaction: %w", err)
	}

	if err := ptx.UpdateBalance(ctx, newBalance); err != nil {
		if errors.Is(err, ErrConsistency) {
			slog.Error("balance update lost the locked facility row", "facility_id", fac.ID)
		}

		return nil, fmt.Errorf("updating balance: %w", err)
	}

	if err := ptx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reversal: %w", err)
	}

	metrics.ReversedTransactions.Inc()

	fac.Balance = newBalance

	return fac, nil
}

func (s *Service) GetBalance(ctx context.Context, facilityID uuid.UUID) (decimal.Decimal, error) {
	fac, err := s.repo.GetFacility(ctx, facilityID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return fac.Balance, nil
}

func (s *Service) GetFacility(ctx context.Context, facilityID uuid.UUID) (*facility.Facility, error) {
	return s.repo.GetFacility(ctx, facilityID)
}

func (s *Service) List(ctx context.Context, facilityID uuid.UUID, skip, limit int) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, facilityID, skip, limit)
}

func (s *Service) ListByKind(ctx context.Context, kind Kind) ([]*Transaction, error) {
	return s.repo.ListByKind(ctx, kind)
}

// FindAllocation returns the allocation transaction referencing the payment,
// or ErrNotFound when the payment produced none.
func (s *Service) FindAllocation(ctx context.Context, paymentID uuid.UUID) (*Transaction, error) {
	return s.repo.FindByPaymentID(ctx, paymentID)
}

// SumAmounts returns the signed sum of a facility's transaction history, used
// by the auditor to check the balance derivability invariant.
func (s *Service) SumAmounts(ctx context.Context, facilityID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.SumAmounts(ctx, facilityID)
}
