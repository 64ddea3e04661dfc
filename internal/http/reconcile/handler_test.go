package reconcile_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	reconcilehttp "github.com/MrJamesThe3rd/ledgerline/internal/http/reconcile"
	"github.com/MrJamesThe3rd/ledgerline/internal/reconcile"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func TestHandler_Verify(t *testing.T) {
	type testCase struct {
		name       string
		balance    string
		sum        string
		wantFrozen bool
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "Consistent",
			balance:    "8500",
			sum:        "1500",
			wantFrozen: false,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "Diverged",
			balance:    "9000",
			sum:        "1500",
			wantFrozen: true,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			l := reconcile.NewMockLedger(ctrl)
			payments := reconcile.NewMockPayments(ctrl)
			facilities := reconcile.NewMockFacilities(ctrl)
			h := reconcilehttp.NewHandler(reconcile.NewService(l, payments, facilities))

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

			router := chi.NewRouter()
			h.Routes(router)

			req := httptest.NewRequest(http.MethodPost, "/facilities/"+fac.ID.String()+"/verify", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
