package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerline/internal/payment"
	"github.com/MrJamesThe3rd/ledgerline/internal/reconcile"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func allocationTx(facilityID uuid.UUID, paymentID *uuid.UUID, description string) *ledger.Transaction {
	return &ledger.Transaction{
		ID:          uuid.New(),
		FacilityID:  facilityID,
		PaymentID:   paymentID,
		Amount:      dec("-100"),
		Kind:        ledger.KindPaymentAllocation,
		Description: description,
	}
}

func TestService_FindOrphans(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := reconcile.NewMockLedger(ctrl)
	payments := reconcile.NewMockPayments(ctrl)
	facilities := reconcile.NewMockFacilities(ctrl)
	svc := reconcile.NewService(l, payments, facilities)

	facilityID := uuid.New()

	livePaymentID := uuid.New()
	deadPaymentID := uuid.New()
	legacyPaymentID := uuid.New()

	live := allocationTx(facilityID, &livePaymentID, "Allocation of 50% of payment "+livePaymentID.String())
	dead := allocationTx(facilityID, &deadPaymentID, "Allocation of 90% of payment "+deadPaymentID.String())
	legacy := allocationTx(facilityID, nil, "Allocation of 25% of payment "+legacyPaymentID.String())
	unattributable := allocationTx(facilityID, nil, "manual correction")

	l.EXPECT().ListByKind(gomock.Any(), ledger.KindPaymentAllocation).
		Return([]*ledger.Transaction{live, dead, legacy, unattributable}, nil)
	payments.EXPECT().Get(gomock.Any(), livePaymentID).Return(&payment.Payment{ID: livePaymentID}, nil)
	payments.EXPECT().Get(gomock.Any(), deadPaymentID).Return(nil, payment.ErrNotFound)
	payments.EXPECT().Get(gomock.Any(), legacyPaymentID).Return(nil, payment.ErrNotFound)

	orphans, unresolved, err := svc.FindOrphans(context.Background())
	require.NoError(t, err)

	require.Len(t, orphans, 2)
	assert.Equal(t, dead.ID, orphans[0].Transaction.ID)
	assert.Equal(t, reconcile.LinkedByReference, orphans[0].Link)
	assert.Equal(t, deadPaymentID, orphans[0].PaymentID)
	assert.Equal(t, legacy.ID, orphans[1].Transaction.ID)
	assert.Equal(t, reconcile.LinkedByDescriptionHeuristic, orphans[1].Link)
	assert.Equal(t, legacyPaymentID, orphans[1].PaymentID)

	require.Len(t, unresolved, 1)
	assert.Equal(t, unattributable.ID, unresolved[0])
}

func TestService_RepairAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := reconcile.NewMockLedger(ctrl)
	payments := reconcile.NewMockPayments(ctrl)
	facilities := reconcile.NewMockFacilities(ctrl)
	svc := reconcile.NewService(l, payments, facilities)

	facilityID := uuid.New()
	deadA := uuid.New()
	deadB := uuid.New()

	txA := allocationTx(facilityID, &deadA, "")
	txB := allocationTx(facilityID, &deadB, "")

	l.EXPECT().ListByKind(gomock.Any(), ledger.KindPaymentAllocation).
		Return([]*ledger.Transaction{txA, txB}, nil)
	payments.EXPECT().Get(gomock.Any(), deadA).Return(nil, payment.ErrNotFound)
	payments.EXPECT().Get(gomock.Any(), deadB).Return(nil, payment.ErrNotFound)
	l.EXPECT().Reverse(gomock.Any(), txA.ID).Return(&facility.Facility{ID: facilityID}, nil)
	l.EXPECT().Reverse(gomock.Any(), txB.ID).Return(&facility.Facility{ID: facilityID}, nil)

	fac := &facility.Facility{ID: facilityID, Total: dec("10000"), Balance: dec("10000")}
	l.EXPECT().GetFacility(gomock.Any(), facilityID).Return(fac, nil)
	l.EXPECT().SumAmounts(gomock.Any(), facilityID).Return(dec("0"), nil)

	report, err := svc.RepairAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Repaired)
	assert.Equal(t, []uuid.UUID{facilityID}, report.FacilityIDs, "a facility touched twice is reported once")
	assert.Empty(t, report.Unresolved)
	assert.Empty(t, report.Failures)
	assert.Empty(t, report.Inconsistent)
}

// A second run finds nothing to repair: the first run already removed the
// orphans from the scan.
func TestService_RepairAll_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := reconcile.NewMockLedger(ctrl)
	payments := reconcile.NewMockPayments(ctrl)
	facilities := reconcile.NewMockFacilities(ctrl)
	svc := reconcile.NewService(l, payments, facilities)

	facilityID := uuid.New()
	deadID := uuid.New()
	tx := allocationTx(facilityID, &deadID, "")

	gomock.InOrder(
		l.EXPECT().ListByKind(gomock.Any(), ledger.KindPaymentAllocation).
			Return([]*ledger.Transaction{tx}, nil),
		l.EXPECT().ListByKind(gomock.Any(), ledger.KindPaymentAllocation).
			Return(nil, nil),
	)
	payments.EXPECT().Get(gomock.Any(), deadID).Return(nil, payment.ErrNotFound)
	l.EXPECT().Reverse(gomock.Any(), tx.ID).Return(&facility.Facility{ID: facilityID}, nil)

	fac := &facility.Facility{ID: facilityID, Total: dec("10000"), Balance: dec("10000")}
	l.EXPECT().GetFacility(gomock.Any(), facilityID).Return(fac, nil)
	l.EXPECT().SumAmounts(gomock.Any(), facilityID).Return(dec("0"), nil)

	first, err := svc.RepairAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Repaired)

	second, err := svc.RepairAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Repaired)
	assert.Empty(t, second.FacilityIDs)
}

// One unrepairable orphan must not abort the batch.
func TestService_RepairAll_ContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := reconcile.NewMockLedger(ctrl)
	payments := reconcile.NewMockPayments(ctrl)
	facilities := reconcile.NewMockFacilities(ctrl)
	svc := reconcile.NewService(l, payments, facilities)

	facilityID := uuid.New()
	deadA := uuid.New()
	deadB := uuid.New()

	txA := allocationTx(facilityID, &deadA, "")
	txB := allocationTx(facilityID, &deadB, "")

	l.EXPECT().ListByKind(gomock.Any(), ledger.KindPaymentAllocation).
		Return([]*ledger.Transaction{txA, txB}, nil)
	payments.EXPECT().Get(gomock.Any(), deadA).Return(nil, payment.ErrNotFound)
	payments.EXPECT().Get(gomock.Any(), deadB).Return(nil, payment.ErrNotFound)
	l.EXPECT().Reverse(gomock.Any(), txA.ID).Return(nil, errors.New("facility row gone"))
	l.EXPECT().Reverse(gomock.Any(), txB.ID).Return(&facility.Facility{ID: facilityID}, nil)

	fac := &facility.Facility{ID: facilityID, Total: dec("10000"), Balance: dec("10000")}
	l.EXPECT().GetFacility(gomock.Any(), facilityID).Return(fac, nil)
	l.EXPECT().SumAmounts(gomock.Any(), facilityID).Return(dec("0"), nil)

	report, err := svc.RepairAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Repaired)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[txA.ID], "facility row gone")
}

// A batch that leaves a touched facility with an underivable balance must
// freeze it and surface the facility in the report.
func TestService_RepairAll_FreezesDivergedFacility(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := reconcile.NewMockLedger(ctrl)
	payments := reconcile.NewMockPayments(ctrl)
	facilities := reconcile.NewMockFacilities(ctrl)
	svc := reconcile.NewService(l, payments, facilities)

	facilityID := uuid.New()
	deadID := uuid.New()
	tx := allocationTx(facilityID, &deadID, "")

	l.EXPECT().ListByKind(gomock.Any(), ledger.KindPaymentAllocation).
		Return([]*ledger.Transaction{tx}, nil)
	payments.EXPECT().Get(gomock.Any(), deadID).Return(nil, payment.ErrNotFound)
	l.EXPECT().Reverse(gomock.Any(), tx.ID).Return(&facility.Facility{ID: facilityID}, nil)

	// total 10000 with a summed history of 1500 derives 8500, not 9000.
	fac := &facility.Facility{ID: facilityID, Total: dec("10000"), Balance: dec("9000")}
	l.EXPECT().GetFacility(gomock.Any(), facilityID).Return(fac, nil)
	l.EXPECT().SumAmounts(gomock.Any(), facilityID).Return(dec("1500"), nil)
	facilities.EXPECT().Freeze(gomock.Any(), facilityID).Return(nil)

	report, err := svc.RepairAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Repaired)
	assert.Equal(t, []uuid.UUID{facilityID}, report.Inconsistent)
}

func TestService_VerifyFacility(t *testing.T) {
	type testCase struct {
		name       string
		balance    string
		sum        string
		wantFrozen bool
	}

	tests := []testCase{
		{
			// total 10000, one draw of 1500: balance 8500 is derivable.
			name:       "Consistent",
			balance:    "8500",
			sum:        "1500",
			wantFrozen: false,
		},
		{
			name:       "Diverged",
			balance:    "9000",
			sum:        "1500",
			wantFrozen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			l := reconcile.NewMockLedger(ctrl)
			payments := reconcile.NewMockPayments(ctrl)
			facilities := reconcile.NewMockFacilities(ctrl)
			svc := reconcile.NewService(l, payments, facilities)

			fac := &facility.Facility{
				ID:      uuid.New(),
				Total:   dec("10000"),
				Balance: dec(tt.balance),
			}

			l.EXPECT().GetFacility(gomock.Any(), fac.ID).Return(fac, nil)
			l.EXPECT().SumAmounts(gomock.Any(), fac.ID).Return(dec(tt.sum), nil)

			if tt.wantFrozen {
				facilities.EXPECT().Freeze(gomock.Any(), fac.ID).Return(nil)
			}

			err := svc.VerifyFacility(context.Background(), fac.ID)
			if tt.wantFrozen {
				assert.ErrorIs(t, err, ledger.ErrConsistency)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_FindOrphans_HeuristicParsesAllocatorFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := reconcile.NewMockLedger(ctrl)
	payments := reconcile.NewMockPayments(ctrl)
	facilities := reconcile.NewMockFacilities(ctrl)
	svc := reconcile.NewService(l, payments, facilities)

	paymentID := uuid.New()
	tx := allocationTx(uuid.New(), nil, fmt.Sprintf("Allocation of 12.5%% of payment %s", paymentID))

	l.EXPECT().ListByKind(gomock.Any(), ledger.KindPaymentAllocation).
		Return([]*ledger.Transaction{tx}, nil)
	payments.EXPECT().Get(gomock.Any(), paymentID).Return(nil, payment.ErrNotFound)

	orphans, unresolved, err := svc.FindOrphans(context.Background())
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, paymentID, orphans[0].PaymentID)
	assert.Empty(t, unresolved)
}
