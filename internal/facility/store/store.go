package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectFacilityColumns = `
	id, name, opened_on, closes_on, total, balance, interest_rate, revolving,
	opening_fee, frozen, created_at, updated_at
`

// scanFacility reads a facility row in selectFacilityColumns order.
func scanFacility(s scanner) (*facility.Facility, error) {
	var f facility.Facility

	if err := s.Scan(
		&f.ID, &f.Name, &f.OpenedOn, &f.ClosesOn, &f.Total, &f.Balance,
		&f.InterestRate, &f.Revolving, &f.OpeningFee, &f.Frozen,
		&f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &f, nil
}

func (s *Store) CreateFacility(ctx context.Context, f *facility.Facility) error {
	query := `
		INSERT INTO facilities (name, opened_on, closes_on, total, balance, interest_rate, revolving, opening_fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		f.Name,
		f.OpenedOn,
		f.ClosesOn,
		f.Total,
		f.Balance,
		f.InterestRate,
		f.Revolving,
		f.OpeningFee,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating facility: %w", err)
	}

	return nil
}

func (s *Store) GetFacility(ctx context.Context, id uuid.UUID) (*facility.Facility, error) {
	query := `SELECT ` + selectFacilityColumns + ` FROM facilities WHERE id = $1`

	f, err := scanFacility(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, facility.ErrNotFound
		}

		return nil, fmt.Errorf("getting facility: %w", err)
	}

	return f, nil
}

func (s *Store) ListFacilities(ctx context.Context) ([]*facility.Facility, error) {
	query := `SELECT ` + selectFacilityColumns + ` FROM facilities ORDER BY opened_on ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing facilities: %w", err)
	}
	defer rows.Close()

	var fs []*facility.Facility

	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning facility: %w", err)
		}

		fs = append(fs, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating facility rows: %w", err)
	}

	return fs, nil
}

func (s *Store) UpdateFacility(ctx context.Context, f *facility.Facility) error {
	query := `
		UPDATE facilities
		SET name = $1, closes_on = $2, interest_rate = $3, opening_fee = $4, updated_at = NOW()
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		f.Name,
		f.ClosesOn,
		f.InterestRate,
		f.OpeningFee,
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("updating facility: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return facility.ErrNotFound
	}

	return nil
}

func (s *Store) SetFrozen(ctx context.Context, id uuid.UUID, frozen bool) error {
	query := `
		UPDATE facilities
		SET frozen = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, frozen, id)
	if err != nil {
		return fmt.Errorf("setting frozen flag: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return facility.ErrNotFound
	}

	return nil
}

// DeleteFacility removes the facility row. The schema's ON DELETE CASCADE
// removes every owned transaction in the same statement, so the facility and
// its history never diverge.
func (s *Store) DeleteFacility(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM facilities WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting facility: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return facility.ErrNotFound
	}

	return nil
}
