package facility

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerline/internal/facility"
)

type Handler struct {
	svc *facility.Service
}

func NewHandler(svc *facility.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/unfreeze", h.unfreeze)
}

type createFacilityRequest struct {
	Name         string           `json:"name"`
	OpenedOn     time.Time        `json:"opened_on"`
	ClosesOn     *time.Time       `json:"closes_on,omitempty"`
	Total        decimal.Decimal  `json:"total"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	Revolving    bool             `json:"revolving"`
	OpeningFee   *decimal.Decimal `json:"opening_fee,omitempty"`
}

type facilityResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	OpenedOn     time.Time        `json:"opened_on"`
	ClosesOn     *time.Time       `json:"closes_on,omitempty"`
	Total        decimal.Decimal  `json:"total"`
	Balance      decimal.Decimal  `json:"balance"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	Revolving    bool             `json:"revolving"`
	OpeningFee   *decimal.Decimal `json:"opening_fee,omitempty"`
	Frozen       bool             `json:"frozen"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(f *facility.Facility) facilityResponse {
	return facilityResponse{
		ID:           f.ID,
		Name:         f.Name,
		OpenedOn:     f.OpenedOn,
		ClosesOn:     f.ClosesOn,
		Total:        f.Total,
		Balance:      f.Balance,
		InterestRate: f.InterestRate,
		Revolving:    f.Revolving,
		OpeningFee:   f.OpeningFee,
		Frozen:       f.Frozen,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.svc.Create(r.Context(), facility.CreateParams{
		Name:         req.Name,
		OpenedOn:     req.OpenedOn,
		ClosesOn:     req.ClosesOn,
		Total:        req.Total,
		InterestRate: req.InterestRate,
		Revolving:    req.Revolving,
		OpeningFee:   req.OpeningFee,
	})
	if err != nil {
		if errors.Is(err, facility.ErrInvalidTotal) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(f)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	fs, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]facilityResponse, len(fs))
	for i, f := range fs {
		resp[i] = toResponse(f)
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

	f, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, facility.ErrNotFound) {
			http.Error(w, "facility not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(f)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateFacilityRequest struct {
	Name         *string          `json:"name,omitempty"`
	ClosesOn     *time.Time       `json:"closes_on,omitempty"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty"`
	OpeningFee   *decimal.Decimal `json:"opening_fee,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, facility.ErrNotFound) {
			http.Error(w, "facility not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.Name != nil {
		f.Name = *req.Name
	}

	if req.ClosesOn != nil {
		f.ClosesOn = req.ClosesOn
	}

	if req.InterestRate != nil {
		f.InterestRate = req.InterestRate
	}

	if req.OpeningFee != nil {
		f.OpeningFee = req.OpeningFee
	}

	if err := h.svc.Update(r.Context(), f); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(f)); err != nil {
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
		if errors.Is(err, facility.ErrNotFound) {
			http.Error(w, "facility not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unfreeze(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Unfreeze(r.Context(), id); err != nil {
		if errors.Is(err, facility.ErrNotFound) {
			http.Error(w, "facility not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
