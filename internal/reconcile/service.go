// Package reconcile detects and repairs allocation transactions whose
// originating payment no longer exists. It is a maintenance tool, run on
// demand by an operator or on a schedule, not part of the request path.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerline/internal/metrics"
	"github.com/MrJamesThe3rd/ledgerline/internal/payment"
)

//go:generate mockgen -source=service.go -destination=deps_mock.go -package=reconcile
type Ledger interface {
	ListByKind(ctx context.Context, kind ledger.Kind) ([]*ledger.Transaction, error)
	Reverse(ctx context.Context, txID uuid.UUID) (*facility.Facility, error)
	GetFacility(ctx context.Context, id uuid.UUID) (*facility.Facility, error)
	SumAmounts(ctx context.Context, facilityID uuid.UUID) (decimal.Decimal, error)
}

type Payments interface {
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
}

type Facilities interface {
	Freeze(ctx context.Context, id uuid.UUID) error
}

// Link records how an allocation transaction was tied back to its payment.
type Link string

const (
	// LinkedByReference means the transaction's payment_id column was set.
	// Every allocation written by this engine carries it.
	LinkedByReference Link = "reference"

	// LinkedByDescriptionHeuristic means the payment id was recovered by
	// pattern-matching the description text. Fallback for legacy rows written
	// before the back-reference column existed.
	LinkedByDescriptionHeuristic Link = "description_heuristic"
)

// Orphan is an allocation transaction whose payment no longer resolves.
type Orphan struct {
	Transaction *ledger.Transaction
	Link        Link
	PaymentID   uuid.UUID
}

// RepairReport summarizes one reconciliation batch.
type RepairReport struct {
	Repaired    int
	FacilityIDs []uuid.UUID

	// Unresolved holds allocation transactions with neither a payment
	// reference nor a parseable description. They are reported, never
	// reversed: reversing a row we cannot attribute destroys information.
	Unresolved []uuid.UUID

	// Failures records orphans the batch could not repair, keyed by
	// transaction id. A batch never aborts on one bad row.
	Failures map[uuid.UUID]string

	// Inconsistent lists repaired facilities whose stored balance still
	// disagreed with their transaction history afterwards. The verification
	// pass has frozen them.
	Inconsistent []uuid.UUID
}

type Service struct {
	ledger     Ledger
	payments   Payments
	facilities Facilities
}

func NewService(l Ledger, p Payments, f Facilities) *Service {
	return &Service{ledger: l, payments: p, facilities: f}
}

// Matches "payment <uuid>" as written by the allocator's description format.
var paymentRef = regexp.MustCompile(`payment ([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`)

func resolveLink(tx *ledger.Transaction) (uuid.UUID, Link, bool) {
	if tx.PaymentID != nil {
		return *tx.PaymentID, LinkedByReference, true
	}

	m := paymentRef.FindStringSubmatch(tx.Description)
	if m == nil {
		return uuid.Nil, "", false
	}

	id, err := uuid.Parse(m[1])
	if err != nil {
		return uuid.Nil, "", false
	}

	return id, LinkedByDescriptionHeuristic, true
}

// FindOrphans scans every allocation transaction and returns those whose
// payment no longer exists, plus the ids of rows it could not attribute to
// any payment.
func (s *Service) FindOrphans(ctx context.Context) ([]Orphan, []uuid.UUID, error) {
	txs, err := s.ledger.ListByKind(ctx, ledger.KindPaymentAllocation)
	if err != nil {
		return nil, nil, fmt.Errorf("listing allocation transactions: %w", err)
	}

	var (
		orphans    []Orphan
		unresolved []uuid.UUID
	)

	for _, tx := range txs {
		paymentID, link, ok := resolveLink(tx)
		if !ok {
			unresolved = append(unresolved, tx.ID)
			continue
		}

		_, err := s.payments.Get(ctx, paymentID)
		if err == nil {
			continue
		}

		if !errors.Is(err, payment.ErrNotFound) {
			return nil, nil, fmt.Errorf("resolving payment %s: %w", paymentID, err)
		}

		orphans = append(orphans, Orphan{Transaction: tx, Link: link, PaymentID: paymentID})
	}

	return orphans, unresolved, nil
}

// Repair reverses one orphaned allocation, restoring the facility balance to
// the state it would have had absent the orphan.
func (s *Service) Repair(ctx context.Context, orphan Orphan) (*facility.Facility, error) {
	fac, err := s.ledger.Reverse(ctx, orphan.Transaction.ID)
	if err != nil {
		return nil, fmt.Errorf("repairing orphan %s: %w", orphan.Transaction.ID, err)
	}

	metrics.OrphansRepaired.Inc()

	slog.Info("repaired orphaned allocation",
		"transaction_id", orphan.Transaction.ID,
		"payment_id", orphan.PaymentID,
		"facility_id", fac.ID,
		"link", orphan.Link,
	)

	return fac, nil
}

// RepairAll finds and repairs every orphan in one logical batch, then
// verifies the balance of every facility the batch touched. Individual
// failures are recorded in the report and the batch continues; re-running is
// safe because repaired orphans are gone on the next scan.
func (s *Service) RepairAll(ctx context.Context) (*RepairReport, error) {
	orphans, unresolved, err := s.FindOrphans(ctx)
	if err != nil {
		return nil, err
	}

	report := &RepairReport{
		Unresolved: unresolved,
		Failures:   make(map[uuid.UUID]string),
	}

	touched := make(map[uuid.UUID]struct{})

	for _, orphan := range orphans {
		fac, err := s.Repair(ctx, orphan)
		if err != nil {
			slog.Warn("skipping unrepairable orphan",
				"transaction_id", orphan.Transaction.ID,
				"error", err,
			)
			report.Failures[orphan.Transaction.ID] = err.Error()

			continue
		}

		report.Repaired++

		if _, seen := touched[fac.ID]; !seen {
			touched[fac.ID] = struct{}{}
			report.FacilityIDs = append(report.FacilityIDs, fac.ID)
		}
	}

	for _, id := range report.FacilityIDs {
		err := s.VerifyFacility(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrConsistency):
			report.Inconsistent = append(report.Inconsistent, id)
		default:
			slog.Warn("post-repair verification failed",
				"facility_id", id,
				"error", err,
			)
		}
	}

	return report, nil
}

// VerifyFacility checks the balance derivability invariant: the stored
// available balance must equal the committed total minus the signed sum of
// the transaction history. On a mismatch the facility is frozen so the ledger
// refuses further writes until an operator reconciles it.
func (s *Service) VerifyFacility(ctx context.Context, facilityID uuid.UUID) error {
	fac, err := s.ledger.GetFacility(ctx, facilityID)
	if err != nil {
		return err
	}

	sum, err := s.ledger.SumAmounts(ctx, facilityID)
	if err != nil {
		return err
	}

	derived := fac.Total.Sub(sum)
	if fac.Balance.Equal(derived) {
		return nil
	}

	slog.Error("facility balance diverged from transaction history",
		"facility_id", fac.ID,
		"balance", fac.Balance,
		"derived", derived,
	)

	if err := s.facilities.Freeze(ctx, fac.ID); err != nil {
		return fmt.Errorf("freezing inconsistent facility %s: %w", fac.ID, err)
	}

	return fmt.Errorf("facility %s: %w", fac.ID, ledger.ErrConsistency)
}
