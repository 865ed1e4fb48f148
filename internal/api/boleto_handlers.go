package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/auth"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/billing"
	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/services"
)

type paymentRequest struct {
	DataPagamento *types.Date `json:"dataPagamento"`
}

// respondSnapshot fecha toda mutação: erro mapeado ou o snapshot novo.
func respondSnapshot(w http.ResponseWriter, r *http.Request, status int, snap *models.Snapshot, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, snap)
}

// scopeParam lê ?scope=this|all; ausente vale "this".
func scopeParam(r *http.Request) billing.Scope {
	s := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("scope")))
	if s == "" {
		return billing.ScopeThis
	}
	return billing.Scope(s)
}

// GET /api/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Store.GetSnapshot(r.Context(), auth.UserIDFromContext(r.Context()))
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// POST /api/snapshot/refetch
func (h *Handler) Refetch(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Store.Refetch(r.Context(), auth.UserIDFromContext(r.Context()))
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// POST /api/boletos
func (h *Handler) CreateBoleto(w http.ResponseWriter, r *http.Request) {
	var in services.BoletoInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Boletos.CreateBoleto(r.Context(), auth.UserIDFromContext(r.Context()), in)
	respondSnapshot(w, r, http.StatusCreated, snap, err)
}

// PUT /api/boletos/{id}?scope=this|all
func (h *Handler) UpdateBoleto(w http.ResponseWriter, r *http.Request) {
	var in services.BoletoInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Boletos.UpdateBoleto(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], in, scopeParam(r))
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// DELETE /api/boletos/{id}?scope=this|all
func (h *Handler) DeleteBoleto(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Boletos.DeleteBoleto(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], scopeParam(r))
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// POST /api/boletos/{id}/pagamento  corpo opcional {"dataPagamento": "YYYY-MM-DD"}
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Boletos.MarkPaid(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], req.DataPagamento)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// DELETE /api/boletos/{id}/pagamento
func (h *Handler) MarkPending(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Boletos.MarkPending(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// PUT /api/boletos/{id}/data-pagamento  {"dataPagamento": null} volta para pendente
func (h *Handler) SetPaymentDate(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DataPagamento != nil && req.DataPagamento.IsZero() {
		req.DataPagamento = nil
	}
	snap, err := h.svc.Boletos.SetPaymentDate(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], req.DataPagamento)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// DELETE /api/recorrencias/{groupId}
func (h *Handler) DeleteRecurrenceGroup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Boletos.DeleteRecurrenceGroup(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["groupId"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// GET /api/transacoes
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Transactions.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// POST /api/transacoes
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Transactions.Create(r.Context(), auth.UserIDFromContext(r.Context()), in)
	respondSnapshot(w, r, http.StatusCreated, snap, err)
}

// PUT /api/transacoes/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.svc.Transactions.Update(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"], in)
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// DELETE /api/transacoes/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Transactions.Delete(r.Context(), auth.UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	respondSnapshot(w, r, http.StatusOK, snap, err)
}

// GET /api/resumo?ano=2024&mes=4  (padrão: mês corrente)
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	today := h.clock.Today()
	year, month := today.Year(), int(today.Month())

	q := r.URL.Query()
	fields := map[string]string{}
	if v := q.Get("ano"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["ano"] = "deve ser numérico"
		} else {
			year = n
		}
	}
	if v := q.Get("mes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["mes"] = "deve ser numérico"
		} else {
			month = n
		}
	}
	if len(fields) > 0 {
		writeError(w, r, appErrors.NewValidationError("Parâmetros do resumo inválidos.", fields))
		return
	}

	summary, err := h.svc.Transactions.Summary(r.Context(), auth.UserIDFromContext(r.Context()), year, time.Month(month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
