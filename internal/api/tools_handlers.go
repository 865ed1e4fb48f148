package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/auth"
	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/services"
)

type auditLogsResponse struct {
	Total int64                   `json:"total"`
	Items []models.AuditLogEntry `json:"items"`
}

// GET /api/consultas/cnpj/{cnpj}
// Exige usuário autenticado, embora a consulta não leia dados dele.
func (h *Handler) LookupCNPJ(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.CNPJ.FetchCNPJData(r.Context(), mux.Vars(r)["cnpj"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GET /api/consultas/placa/{placa}
func (h *Handler) LookupPlate(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Plates.ConsultarPlaca(r.Context(), mux.Vars(r)["placa"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "placa não encontrada"})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GET /api/exportar/boletos?formato=xlsx|csv
func (h *Handler) ExportBoletos(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "boletos", h.svc.Export.ExportBoletos)
}

// GET /api/exportar/transacoes?formato=xlsx|csv
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "transacoes", h.svc.Export.ExportTransactions)
}

type exportFunc func(ctx context.Context, userID string, w io.Writer, format services.ExportFormat) error

// export gera o arquivo em memória para que uma falha ainda vire JSON de erro.
func (h *Handler) export(w http.ResponseWriter, r *http.Request, name string, fn exportFunc) {
	format, err := services.ParseExportFormat(r.URL.Query().Get("formato"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := fn(r.Context(), auth.UserIDFromContext(r.Context()), &buf, format); err != nil {
		writeError(w, r, err)
		return
	}
	filename := fmt.Sprintf("%s-%s.%s", name, h.clock.Today().String(), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GET /api/auditoria?acao=&severidade=&entidade=&inicio=YYYY-MM-DD&fim=YYYY-MM-DD&limit=&offset=
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.AuditLogFilter{
		Action:   q.Get("acao"),
		Severity: q.Get("severidade"),
		EntityID: q.Get("entidade"),
	}
	fields := map[string]string{}
	for key, dst := range map[string]**time.Time{"inicio": &filter.StartDate, "fim": &filter.EndDate} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		d, err := types.ParseDate(v)
		if err != nil {
			fields[key] = "data inválida"
			continue
		}
		t := d.Time(nil)
		*dst = &t
	}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields[key] = "deve ser um inteiro não negativo"
			continue
		}
		*dst = n
	}
	if len(fields) > 0 {
		writeError(w, r, appErrors.NewValidationError("Filtros de auditoria inválidos.", fields))
		return
	}

	logs, total, err := h.svc.AuditLog.GetAuditLogs(r.Context(), auth.UserIDFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditLogsResponse{Total: total, Items: logs})
}
