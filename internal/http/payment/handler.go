package payment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerline/internal/payment"
)

type Handler struct {
	svc *payment.Service
}

func NewHandler(svc *payment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type createPaymentRequest struct {
	Amount            decimal.Decimal  `json:"amount"`
	Date              time.Time        `json:"date"`
	TargetFacilityID  *uuid.UUID       `json:"target_facility_id,omitempty"`
	AllocationPercent *decimal.Decimal `json:"allocation_percent,omitempty"`
	Description       string           `json:"description"`
}

type paymentResponse struct {
	ID                uuid.UUID        `json:"id"`
	Amount            decimal.Decimal  `json:"amount"`
	Date              time.Time        `json:"date"`
	TargetFacilityID  *uuid.UUID       `json:"target_facility_id,omitempty"`
	AllocationPercent *decimal.Decimal `json:"allocation_percent,omitempty"`
	Description       string           `json:"description"`
	CreatedAt         time.Time        `json:"created_at"`
}

type createPaymentResponse struct {
	Payment    paymentResponse       `json:"payment"`
	Allocation *allocationTxResponse `json:"allocation,omitempty"`
}

type allocationTxResponse struct {
	ID         uuid.UUID       `json:"id"`
	FacilityID uuid.UUID       `json:"facility_id"`
	Amount     decimal.Decimal `json:"amount"`
}

func toResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:                p.ID,
		Amount:            p.Amount,
		Date:              p.Date,
		TargetFacilityID:  p.TargetFacilityID,
		AllocationPercent: p.AllocationPercent,
		Description:       p.Description,
		CreatedAt:         p.CreatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, tx, err := h.svc.Create(r.Context(), payment.CreateParams{
		Amount:            req.Amount,
		Date:              req.Date,
		TargetFacilityID:  req.TargetFacilityID,
		AllocationPercent: req.AllocationPercent,
		Description:       req.Description,
	})
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := createPaymentResponse{Payment: toResponse(p)}
	if tx != nil {
		resp.Allocation = &allocationTxResponse{
			ID:         tx.ID,
			FacilityID: tx.FacilityID,
			Amount:     tx.Amount,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]paymentResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, payment.ErrNotFound):
			http.Error(w, "payment not found", http.StatusNotFound)
		case errors.Is(err, ledger.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
