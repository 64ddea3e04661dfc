package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
)

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	FacilityID  uuid.UUID        `json:"facility_id"`
	PaymentID   *uuid.UUID       `json:"payment_id,omitempty"`
	Date        time.Time        `json:"date"`
	Amount      decimal.Decimal  `json:"amount"`
	Kind        ledger.Kind      `json:"kind"`
	Description string           `json:"description"`
	Fee         *decimal.Decimal `json:"fee,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type balanceResponse struct {
	FacilityID uuid.UUID       `json:"facility_id"`
	Balance    decimal.Decimal `json:"balance"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		FacilityID:  tx.FacilityID,
		PaymentID:   tx.PaymentID,
		Date:        tx.Date,
		Amount:      tx.Amount,
		Kind:        tx.Kind,
		Description: tx.Description,
		Fee:         tx.Fee,
		CreatedAt:   tx.CreatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
