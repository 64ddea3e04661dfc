package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
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

const selectTransactionColumns = `
	t.id, t.facility_id, t.payment_id, t.date, t.amount, t.kind, t.description,
	t.fee, t.created_at
`

const selectFacilityColumns = `
	f.id, f.name, f.opened_on, f.closes_on, f.total, f.balance, f.interest_rate,
	f.revolving, f.opening_fee, f.frozen, f.created_at, f.updated_at
`

// scanTransaction reads a transaction row in selectTransactionColumns order.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var kindStr string

	if err := s.Scan(
		&tx.ID, &tx.FacilityID, &tx.PaymentID, &tx.Date, &tx.Amount, &kindStr,
		&tx.Description, &tx.Fee, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Kind = ledger.Kind(kindStr)

	return &tx, nil
}

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

// postingTx is one atomic unit against the ledger: the facility row is locked
// for update for its lifetime, so concurrent postings on the same facility
// serialize while postings on different facilities proceed independently.
type postingTx struct {
	tx  *sql.Tx
	fac *facility.Facility
	txn *ledger.Transaction
}

func (s *Store) Begin(ctx context.Context, facilityID uuid.UUID) (ledger.PostingTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning posting tx: %w", err)
	}

	query := `SELECT ` + selectFacilityColumns + ` FROM facilities f WHERE f.id = $1 FOR UPDATE`

	fac, err := scanFacility(dbTx.QueryRowContext(ctx, query, facilityID))
	if err != nil {
		dbTx.Rollback()

		if err == sql.ErrNoRows {
			return nil, facility.ErrNotFound
		}

		return nil, fmt.Errorf("locking facility: %w", err)
	}

	return &postingTx{tx: dbTx, fac: fac}, nil
}

func (s *Store) BeginForTransaction(ctx context.Context, txID uuid.UUID) (ledger.PostingTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning reversal tx: %w", err)
	}

	// Lock only the facility row; the transaction row is about to be deleted
	// under the same unit anyway.
	query := `SELECT ` + selectTransactionColumns + `, ` + selectFacilityColumns + `
		FROM facility_transactions t
		JOIN facilities f ON f.id = t.facility_id
		WHERE t.id = $1
		FOR UPDATE OF f`

	var (
		txn  ledger.Transaction
		f    facility.Facility
		kind string
	)

	err = dbTx.QueryRowContext(ctx, query, txID).Scan(
		&txn.ID, &txn.FacilityID, &txn.PaymentID, &txn.Date, &txn.Amount, &kind,
		&txn.Description, &txn.Fee, &txn.CreatedAt,
		&f.ID, &f.Name, &f.OpenedOn, &f.ClosesOn, &f.Total, &f.Balance,
		&f.InterestRate, &f.Revolving, &f.OpeningFee, &f.Frozen,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		dbTx.Rollback()

		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("locking transaction facility: %w", err)
	}

	txn.Kind = ledger.Kind(kind)

	return &postingTx{tx: dbTx, fac: &f, txn: &txn}, nil
}

func (p *postingTx) Facility() *facility.Facility { return p.fac }

func (p *postingTx) Transaction() *ledger.Transaction { return p.txn }

func (p *postingTx) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO facility_transactions (facility_id, payment_id, date, amount, kind, description, fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := p.tx.QueryRowContext(ctx, query,
		tx.FacilityID,
		tx.PaymentID,
		tx.Date,
		tx.Amount,
		tx.Kind,
		tx.Description,
		tx.Fee,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

func (p *postingTx) UpdateBalance(ctx context.Context, balance decimal.Decimal) error {
	query := `
		UPDATE facilities
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := p.tx.ExecContext(ctx, query, balance, p.fac.ID)
	if err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}

	// The row is locked by this unit, so a missing update means the store is
	// in a state the posting path cannot explain.
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return ledger.ErrConsistency
	}

	return nil
}

func (p *postingTx) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM facility_transactions WHERE id = $1`

	res, err := p.tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (p *postingTx) Commit() error   { return p.tx.Commit() }
func (p *postingTx) Rollback() error { return p.tx.Rollback() }

func (s *Store) GetFacility(ctx context.Context, id uuid.UUID) (*facility.Facility, error) {
	query := `SELECT ` + selectFacilityColumns + ` FROM facilities f WHERE f.id = $1`

	f, err := scanFacility(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, facility.ErrNotFound
		}

		return nil, fmt.Errorf("getting facility: %w", err)
	}

	return f, nil
}

func (s *Store) ListTransactions(ctx context.Context, facilityID uuid.UUID, skip, limit int) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM facility_transactions t
		WHERE t.facility_id = $1
		ORDER BY t.date ASC, t.id ASC
		OFFSET $2 LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, facilityID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (s *Store) ListByKind(ctx context.Context, kind ledger.Kind) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM facility_transactions t
		WHERE t.kind = $1
		ORDER BY t.date ASC, t.id ASC`

	rows, err := s.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("listing transactions by kind: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (s *Store) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM facility_transactions t
		WHERE t.payment_id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("finding transaction by payment: %w", err)
	}

	return tx, nil
}

func (s *Store) SumAmounts(ctx context.Context, facilityID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM facility_transactions WHERE facility_id = $1`

	var sum decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, facilityID).Scan(&sum); err != nil {
		return decimal.Decimal{}, fmt.Errorf("summing transaction amounts: %w", err)
	}

	return sum, nil
}

func collectTransactions(rows *sql.Rows) ([]*ledger.Transaction, error) {
	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}
