package facility

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=facility
type Repository interface {
	CreateFacility(ctx context.Context, f *Facility) error
	GetFacility(ctx context.Context, id uuid.UUID) (*Facility, error)
	ListFacilities(ctx context.Context) ([]*Facility, error)
	UpdateFacility(ctx context.Context, f *Facility) error
	SetFrozen(ctx context.Context, id uuid.UUID, frozen bool) error
	DeleteFacility(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name         string
	OpenedOn     time.Time
	ClosesOn     *time.Time
	Total        decimal.Decimal
	InterestRate *decimal.Decimal
	Revolving    bool
	OpeningFee   *decimal.Decimal
}

// Create opens a new facility. The available balance always starts at the
// committed total; draws and paydowns move it from there.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Facility, error) {
	if !params.Total.IsPositive() {
		return nil, ErrInvalidTotal
	}

	f := &Facility{
		Name:         params.Name,
		OpenedOn:     params.OpenedOn,
		ClosesOn:     params.ClosesOn,
		Total:        params.Total,
		Balance:      params.Total,
		InterestRate: params.InterestRate,
		Revolving:    params.Revolving,
		OpeningFee:   params.OpeningFee,
	}
	if err := s.repo.CreateFacility(ctx, f); err != nil {
		return nil, err
	}

	return f, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Facility, error) {
	return s.repo.GetFacility(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Facility, error) {
	return s.repo.ListFacilities(ctx)
}

// Update persists changes to a facility's descriptive attributes. The balance
// is ignored here; it belongs to the ledger's posting path.
func (s *Service) Update(ctx context.Context, f *Facility) error {
	return s.repo.UpdateFacility(ctx, f)
}

// Freeze marks a facility as failed-consistency so the ledger refuses further
// writes against it. Called by the reconciliation auditor.
func (s *Service) Freeze(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetFrozen(ctx, id, true)
}

// Unfreeze clears the frozen flag after an operator has manually reconciled
// the facility.
func (s *Service) Unfreeze(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetFrozen(ctx, id, false)
}

// Delete removes a facility and, by cascade, every transaction it owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteFacility(ctx, id)
}
