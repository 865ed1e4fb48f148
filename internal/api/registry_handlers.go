package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/auth"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/services"
)

type claimStatusRequest struct {
	Status     models.ClaimStatus `json:"status"`
	Observacao string             `json:"observacao"`
}

// --- Clientes ---

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Registry.CreateClient(r.Context(), auth.UserIDFromContext(r.Context()), in)
	respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var in services.ClientInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Registry.UpdateClient(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], in)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Registry.DeleteClient(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// --- Representações ---

func (h *Handler) CreateRepresentation(w http.ResponseWriter, r *http.Request) {
	var in services.RepresentationInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Registry.CreateRepresentation(r.Context(), auth.UserIDFromContext(r.Context()), in)
	respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (h *Handler) UpdateRepresentation(w http.ResponseWriter, r *http.Request) {
	var in services.RepresentationInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Registry.UpdateRepresentation(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], in)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (h *Handler) DeleteRepresentation(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Registry.DeleteRepresentation(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// --- Cotações ---

func (h *Handler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	var in services.QuotationInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Quotations.Create(r.Context(), auth.UserIDFromContext(r.Context()), in)
	respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (h *Handler) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	var in services.QuotationInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Quotations.Update(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], in)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (h *Handler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Quotations.Delete(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// --- Sinistros ---

func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var in services.ClaimInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Claims.Create(r.Context(), auth.UserIDFromContext(r.Context()), in)
	respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (h *Handler) UpdateClaim(w http.ResponseWriter, r *http.Request) {
	var in services.ClaimInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Claims.Update(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], in)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// PUT /api/sinistros/{id}/status
func (h *Handler) UpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	var req claimStatusRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Claims.UpdateStatus(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], req.Status, req.Observacao)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (h *Handler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Claims.Delete(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// --- Agenda ---

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in services.EventInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Events.Create(r.Context(), auth.UserIDFromContext(r.Context()), in)
	respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in services.EventInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Events.Update(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], in)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Events.Delete(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}
