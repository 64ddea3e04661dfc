package reconcile

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
	"github.com/MrJamesThe3rd/ledgerline/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerline/internal/reconcile"
)

// Handler exposes the reconciliation auditor as operator-triggered
// maintenance endpoints, not a public API for ordinary callers.
type Handler struct {
	svc *reconcile.Service
}

func NewHandler(svc *reconcile.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/orphans", h.orphans)
	r.Post("/repair", h.repair)
	r.Post("/facilities/{id}/verify", h.verify)
}

type orphanResponse struct {
	TransactionID uuid.UUID      `json:"transaction_id"`
	FacilityID    uuid.UUID      `json:"facility_id"`
	PaymentID     uuid.UUID      `json:"payment_id"`
	Link          reconcile.Link `json:"link"`
}

type orphansResponse struct {
	Orphans    []orphanResponse `json:"orphans"`
	Unresolved []uuid.UUID      `json:"unresolved,omitempty"`
}

func (h *Handler) orphans(w http.ResponseWriter, r *http.Request) {
	orphans, unresolved, err := h.svc.FindOrphans(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := orphansResponse{
		Orphans:    make([]orphanResponse, len(orphans)),
		Unresolved: unresolved,
	}
	for i, o := range orphans {
		resp.Orphans[i] = orphanResponse{
			TransactionID: o.Transaction.ID,
			FacilityID:    o.Transaction.FacilityID,
			PaymentID:     o.PaymentID,
			Link:          o.Link,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type repairResponse struct {
	Repaired     int                  `json:"repaired"`
	FacilityIDs  []uuid.UUID          `json:"facility_ids,omitempty"`
	Unresolved   []uuid.UUID          `json:"unresolved,omitempty"`
	Failures     map[uuid.UUID]string `json:"failures,omitempty"`
	Inconsistent []uuid.UUID          `json:"inconsistent,omitempty"`
}

func (h *Handler) repair(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.RepairAll(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := repairResponse{
		Repaired:     report.Repaired,
		FacilityIDs:  report.FacilityIDs,
		Unresolved:   report.Unresolved,
		Failures:     report.Failures,
		Inconsistent: report.Inconsistent,
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = h.svc.VerifyFacility(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, facility.ErrNotFound):
		http.Error(w, "facility not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrConsistency):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
