package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerline/internal/payment"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectPaymentColumns = `
	id, amount, date, target_facility_id, allocation_percent, description, created_at
`

func scanPayment(s scanner) (*payment.Payment, error) {
	var p payment.Payment

	if err := s.Scan(
		&p.ID, &p.Amount, &p.Date, &p.TargetFacilityID, &p.AllocationPercent,
		&p.Description, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (amount, date, target_facility_id, allocation_percent, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Amount,
		p.Date,
		p.TargetFacilityID,
		p.AllocationPercent,
		p.Description,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) ListPayments(ctx context.Context) ([]*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM payments ORDER BY date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var ps []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return ps, nil
}

func (s *Store) DeletePayment(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM payments WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return payment.ErrNotFound
	}

	return nil
}
