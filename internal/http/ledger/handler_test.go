package ledger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	ledgerhttp "github.com/MrJamesThe3rd/ledgerline/internal/http/ledger"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
)

func TestHandler_ListTransactions_ClampsLimit(t *testing.T) {
	type testCase struct {
		name      string
		query     string
		wantSkip  int
		wantLimit int
	}

	tests := []testCase{
		{
			name:      "Default",
			query:     "",
			wantSkip:  0,
			wantLimit: 100,
		},
		{
			name:      "WithinBounds",
			query:     "?skip=20&limit=50",
			wantSkip:  20,
			wantLimit: 50,
		},
		{
			name:      "OversizedLimitClamped",
			query:     "?limit=100000000",
			wantSkip:  0,
			wantLimit: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			h := ledgerhttp.NewHandler(ledger.NewService(repo))

			facilityID := uuid.New()
			repo.EXPECT().
				ListTransactions(gomock.Any(), facilityID, tt.wantSkip, tt.wantLimit).
				Return(nil, nil)

			router := chi.NewRouter()
			h.FacilityRoutes(router)

			req := httptest.NewRequest(http.MethodGet, "/"+facilityID.String()+"/transactions"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
