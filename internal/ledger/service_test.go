package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func newFacility(total, balance string, revolving bool) *facility.Facility {
	return &facility.Facility{
		ID:        uuid.New(),
		Name:      "Test Facility",
		OpenedOn:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Total:     dec(total),
		Balance:   dec(balance),
		Revolving: revolving,
	}
}

func TestService_Post_Draw(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo)

	fac := newFacility("10000", "5000", false)

	var gotBalance decimal.Decimal

	var gotTx *ledger.Transaction

	repo.EXPECT().Begin(gomock.Any(), fac.ID).Return(ptx, nil)
	ptx.EXPECT().Facility().Return(fac)
	ptx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			tx.ID = uuid.New()
			tx.CreatedAt = time.Now()
			gotTx = tx
			return nil
		})
	ptx.EXPECT().UpdateBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, balance decimal.Decimal) error {
			gotBalance = balance
			return nil
		})
	ptx.EXPECT().Commit().Return(nil)
	ptx.EXPECT().Rollback().Return(nil)

	tx, err := svc.Post(context.Background(), ledger.PostParams{
		FacilityID:  fac.ID,
		Amount:      dec("1000"),
		Kind:        ledger.KindDraw,
		Description: "equipment purchase",
	})
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.True(t, gotBalance.Equal(dec("4000")), "balance should drop by the draw amount, got %s", gotBalance)
	assert.True(t, gotTx.Amount.Equal(dec("1000")))
	assert.Equal(t, ledger.KindDraw, gotTx.Kind)
	assert.Equal(t, fac.ID, gotTx.FacilityID)
	assert.Nil(t, gotTx.PaymentID)
}

func TestService_Post_Rejections(t *testing.T) {
	type testCase struct {
		name    string
		fac     *facility.Facility
		amount  decimal.Decimal
		kind    ledger.Kind
		noBegin bool
		wantErr error
	}

	tests := []testCase{
		{
			name:    "ZeroAmount",
			fac:     newFacility("10000", "10000", false),
			amount:  decimal.Zero,
			kind:    ledger.KindDraw,
			noBegin: true,
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "DrawBelowZeroNonRevolving",
			fac:     newFacility("10000", "300", false),
			amount:  dec("301"),
			kind:    ledger.KindDraw,
			wantErr: ledger.ErrInsufficientFunds,
		},
		{
			name: "FrozenFacility",
			fac: func() *facility.Facility {
				f := newFacility("10000", "10000", false)
				f.Frozen = true
				return f
			}(),
			amount:  dec("100"),
			kind:    ledger.KindDraw,
			wantErr: facility.ErrFrozen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			svc := ledger.NewService(repo)

			if !tt.noBegin {
				ptx := ledger.NewMockPostingTx(ctrl)
				repo.EXPECT().Begin(gomock.Any(), tt.fac.ID).Return(ptx, nil)
				ptx.EXPECT().Facility().Return(tt.fac).MaxTimes(1)
				ptx.EXPECT().Rollback().Return(nil)
			}

			tx, err := svc.Post(context.Background(), ledger.PostParams{
				FacilityID: tt.fac.ID,
				Amount:     tt.amount,
				Kind:       tt.kind,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tx)
		})
	}
}

func TestService_Post_RevolvingAllowsOverdraw(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo)

	fac := newFacility("10000", "100", true)

	var gotBalance decimal.Decimal

	repo.EXPECT().Begin(gomock.Any(), fac.ID).Return(ptx, nil)
	ptx.EXPECT().Facility().Return(fac)
	ptx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)
	ptx.EXPECT().UpdateBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, balance decimal.Decimal) error {
			gotBalance = balance
			return nil
		})
	ptx.EXPECT().Commit().Return(nil)
	ptx.EXPECT().Rollback().Return(nil)

	tx, err := svc.Post(context.Background(), ledger.PostParams{
		FacilityID: fac.ID,
		Amount:     dec("101"),
		Kind:       ledger.KindDraw,
	})
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.True(t, gotBalance.Equal(dec("-1")), "revolving facility may go negative, got %s", gotBalance)
	assert.True(t, tx.Amount.Equal(dec("101")))
}

// A paydown lifting a non-revolving facility above its committed total is
// clamped at the total, and the transaction stores the delta actually applied
// so the balance stays derivable from history.
func TestService_Post_ClampsOverpayment(t *testing.T) {
	type testCase struct {
		name          string
		balance       string
		amount        string
		wantBalance   string
		wantEffective string
	}

	tests := []testCase{
		{
			name:          "FullyClampedAtCap",
			balance:       "10000",
			amount:        "-900",
			wantBalance:   "10000",
			wantEffective: "0",
		},
		{
			name:          "PartiallyClamped",
			balance:       "9500",
			amount:        "-900",
			wantBalance:   "10000",
			wantEffective: "-500",
		},
		{
			name:          "NotClampedBelowCap",
			balance:       "8000",
			amount:        "-900",
			wantBalance:   "8900",
			wantEffective: "-900",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			ptx := ledger.NewMockPostingTx(ctrl)
			svc := ledger.NewService(repo)

			fac := newFacility("10000", tt.balance, false)

			var gotBalance decimal.Decimal

			repo.EXPECT().Begin(gomock.Any(), fac.ID).Return(ptx, nil)
			ptx.EXPECT().Facility().Return(fac)
			ptx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)
			ptx.EXPECT().UpdateBalance(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, balance decimal.Decimal) error {
					gotBalance = balance
					return nil
				})
			ptx.EXPECT().Commit().Return(nil)
			ptx.EXPECT().Rollback().Return(nil)

			tx, err := svc.Post(context.Background(), ledger.PostParams{
				FacilityID: fac.ID,
				Amount:     dec(tt.amount),
				Kind:       ledger.KindCapitalPaydown,
			})
			require.NoError(t, err)
			require.NotNil(t, tx)

			assert.True(t, gotBalance.Equal(dec(tt.wantBalance)), "balance %s, want %s", gotBalance, tt.wantBalance)
			assert.True(t, tx.Amount.Equal(dec(tt.wantEffective)), "effective amount %s, want %s", tx.Amount, tt.wantEffective)
		})
	}
}

func TestService_Reverse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	ptx := ledger.NewMockPostingTx(ctrl)
	svc := ledger.NewService(repo)

	fac := newFacility("10000", "9100", false)
	txn := &ledger.Transaction{
		ID:         uuid.New(),
		FacilityID: fac.ID,
		Amount:     dec("-900"),
		Kind:       ledger.KindPaymentAllocation,
	}

	var gotBalance decimal.Decimal

	repo.EXPECT().BeginForTransaction(gomock.Any(), txn.ID).Return(ptx, nil)
	ptx.EXPECT().Facility().Return(fac)
	ptx.EXPECT().Transaction().Return(txn)
	ptx.EXPECT().DeleteTransaction(gomock.Any(), txn.ID).Return(nil)
	ptx.EXPECT().UpdateBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, balance decimal.Decimal) error {
			gotBalance = balance
			return nil
		})
	ptx.EXPECT().Commit().Return(nil)
	ptx.EXPECT().Rollback().Return(nil)

	got, err := svc.Reverse(context.Background(), txn.ID)
	require.NoError(t, err)

	assert.True(t, gotBalance.Equal(dec("8200")), "reversal re-applies the stored amount with opposite sign, got %s", gotBalance)
	assert.True(t, got.Balance.Equal(dec("8200")))
}

func TestService_Reverse_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	txID := uuid.New()
	repo.EXPECT().BeginForTransaction(gomock.Any(), txID).Return(nil, ledger.ErrNotFound)

	got, err := svc.Reverse(context.Background(), txID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Nil(t, got)
}

// The concrete over-payment scenario: a 90% allocation of a 1000 payment
// against a full 10000 facility is clamped to no-op, and reversing it leaves
// the balance at exactly 10000.
func TestService_ClampedPostingReversesExactly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	fac := newFacility("10000", "10000", false)
	paymentID := uuid.New()

	// Post the clamped allocation.
	postTx := ledger.NewMockPostingTx(ctrl)

	var stored *ledger.Transaction

	var balanceAfterPost decimal.Decimal

	repo.EXPECT().Begin(gomock.Any(), fac.ID).Return(postTx, nil)
	postTx.EXPECT().Facility().Return(fac)
	postTx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			tx.ID = uuid.New()
			stored = tx
			return nil
		})
	postTx.EXPECT().UpdateBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, balance decimal.Decimal) error {
			balanceAfterPost = balance
			return nil
		})
	postTx.EXPECT().Commit().Return(nil)
	postTx.EXPECT().Rollback().Return(nil)

	_, err := svc.Post(context.Background(), ledger.PostParams{
		FacilityID: fac.ID,
		Amount:     dec("-900"),
		Kind:       ledger.KindPaymentAllocation,
		PaymentID:  &paymentID,
	})
	require.NoError(t, err)
	require.True(t, balanceAfterPost.Equal(dec("10000")))

	// Reverse it using the stored effective amount.
	revTx := ledger.NewMockPostingTx(ctrl)

	facAfter := newFacility("10000", "10000", false)
	facAfter.ID = fac.ID
	facAfter.Balance = balanceAfterPost

	var balanceAfterReverse decimal.Decimal

	repo.EXPECT().BeginForTransaction(gomock.Any(), stored.ID).Return(revTx, nil)
	revTx.EXPECT().Facility().Return(facAfter)
	revTx.EXPECT().Transaction().Return(stored)
	revTx.EXPECT().DeleteTransaction(gomock.Any(), stored.ID).Return(nil)
	revTx.EXPECT().UpdateBalance(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, balance decimal.Decimal) error {
			balanceAfterReverse = balance
			return nil
		})
	revTx.EXPECT().Commit().Return(nil)
	revTx.EXPECT().Rollback().Return(nil)

	_, err = svc.Reverse(context.Background(), stored.ID)
	require.NoError(t, err)

	assert.True(t, balanceAfterReverse.Equal(dec("10000")), "clamped allocation must reverse to the pre-clamp balance exactly, got %s", balanceAfterReverse)
}

func TestService_GetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	fac := newFacility("10000", "7250", false)
	repo.EXPECT().GetFacility(gomock.Any(), fac.ID).Return(fac, nil)

	balance, err := svc.GetBalance(context.Background(), fac.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("7250")))
}

func TestService_GetBalance_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	id := uuid.New()
	repo.EXPECT().GetFacility(gomock.Any(), id).Return(nil, facility.ErrNotFound)

	_, err := svc.GetBalance(context.Background(), id)
	assert.ErrorIs(t, err, facility.ErrNotFound)
}
