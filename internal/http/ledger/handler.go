package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the transaction-scoped endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Delete("/{id}", h.reverse)
}

// FacilityRoutes registers the endpoints nested under a facility.
func (h *Handler) FacilityRoutes(r chi.Router) {
	r.Get("/{id}/balance", h.balance)
	r.Get("/{id}/transactions", h.listTransactions)
	r.Post("/{id}/transactions", h.post)
}

type postTransactionRequest struct {
	Amount      decimal.Decimal  `json:"amount"`
	Kind        ledger.Kind      `json:"kind"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	Fee         *decimal.Decimal `json:"fee,omitempty"`
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	facilityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req postTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Post(r.Context(), ledger.PostParams{
		FacilityID:  facilityID,
		Amount:      req.Amount,
		Kind:        req.Kind,
		Description: req.Description,
		Date:        req.Date,
		Fee:         req.Fee,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	txID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	fac, err := h.svc.Reverse(r.Context(), txID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := balanceResponse{FacilityID: fac.ID, Balance: fac.Balance}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	facilityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), facilityID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := balanceResponse{FacilityID: facilityID, Balance: balance}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	facilityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	skip := 0
	if s := r.URL.Query().Get("skip"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			skip = n
		}
	}

	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	txs, err := h.svc.List(r.Context(), facilityID, skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, facility.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, facility.ErrFrozen):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
