package facility_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    facility.CreateParams
		setupMock func(m *facility.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: facility.CreateParams{
				Name:     "Working Capital Line",
				OpenedOn: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Total:    decimal.NewFromInt(250000),
			},
			setupMock: func(m *facility.MockRepository) {
				m.EXPECT().
					CreateFacility(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f *facility.Facility) error {
						f.ID = uuid.New()
						f.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "ZeroTotal",
			params: facility.CreateParams{
				Name:  "Empty Line",
				Total: decimal.Zero,
			},
			wantErr: facility.ErrInvalidTotal,
		},
		{
			name: "NegativeTotal",
			params: facility.CreateParams{
				Name:  "Negative Line",
				Total: decimal.NewFromInt(-100),
			},
			wantErr: facility.ErrInvalidTotal,
		},
		{
			name: "RepoError",
			params: facility.CreateParams{
				Name:  "Broken Line",
				Total: decimal.NewFromInt(1000),
			},
			setupMock: func(m *facility.MockRepository) {
				m.EXPECT().
					CreateFacility(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := facility.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := facility.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
			assert.True(t, got.Balance.Equal(tt.params.Total), "a new facility opens with its full total available")
		})
	}
}

func TestService_FreezeUnfreeze(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := facility.NewMockRepository(ctrl)
	svc := facility.NewService(repo)

	id := uuid.New()

	gomock.InOrder(
		repo.EXPECT().SetFrozen(gomock.Any(), id, true).Return(nil),
		repo.EXPECT().SetFrozen(gomock.Any(), id, false).Return(nil),
	)

	require.NoError(t, svc.Freeze(context.Background(), id))
	require.NoError(t, svc.Unfreeze(context.Background(), id))
}

func TestService_Delete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := facility.NewMockRepository(ctrl)
	svc := facility.NewService(repo)

	id := uuid.New()
	repo.EXPECT().DeleteFacility(gomock.Any(), id).Return(facility.ErrNotFound)

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, facility.ErrNotFound)
}
