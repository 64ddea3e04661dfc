package database

import (
	"database/sql"
	"fmt"
)

// schema is applied on startup so the tables always exist.
// facility_transactions.payment_id deliberately carries no foreign key to
// payments: the back-reference must survive a payment's deletion so the
// reconciliation auditor can detect the orphan.
const schema = `
CREATE TABLE IF NOT EXISTS facilities (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL,
    opened_on DATE NOT NULL,
    closes_on DATE,
    total NUMERIC(20,4) NOT NULL,
    balance NUMERIC(20,4) NOT NULL,
    interest_rate NUMERIC(8,4),
    revolving BOOLEAN NOT NULL DEFAULT FALSE,
    opening_fee NUMERIC(20,4),
    frozen BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    amount NUMERIC(20,4) NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    target_facility_id UUID,
    allocation_percent NUMERIC(7,4),
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS facility_transactions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    facility_id UUID NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
    payment_id UUID,
    date TIMESTAMPTZ NOT NULL,
    amount NUMERIC(20,4) NOT NULL,
    kind TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    fee NUMERIC(20,4),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_facility_transactions_facility_date ON facility_transactions(facility_id, date, id);
CREATE INDEX IF NOT EXISTS idx_facility_transactions_payment_id ON facility_transactions(payment_id);
CREATE INDEX IF NOT EXISTS idx_facility_transactions_kind ON facility_transactions(kind);
`

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	return nil
}
