package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/auth"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/services"
)

// Handler expõe os serviços da corretora via HTTP/JSON.
// Toda mutação responde com o snapshot recarregado do usuário.
type Handler struct {
	svc   *services.Services
	clock services.Clock
}

// NewRouter monta as rotas. Tudo sob /api exige token Bearer; /healthz é público.
func NewRouter(svc *services.Services, tokens *auth.TokenManager, corsOrigins []string, clock services.Clock) http.Handler {
	if svc == nil || tokens == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para api.NewRouter")
	}
	h := &Handler{svc: svc, clock: clock}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.Use(tokens.Middleware)

	// Snapshot
	a.HandleFunc("/snapshot", h.GetSnapshot).Methods(http.MethodGet)
	a.HandleFunc("/snapshot/refetch", h.Refetch).Methods(http.MethodPost)

	// Boletos
	a.HandleFunc("/boletos", h.CreateBoleto).Methods(http.MethodPost)
	a.HandleFunc("/boletos/{id}", h.UpdateBoleto).Methods(http.MethodPut)
	a.HandleFunc("/boletos/{id}", h.DeleteBoleto).Methods(http.MethodDelete)
	a.HandleFunc("/boletos/{id}/pagamento", h.MarkPaid).Methods(http.MethodPost)
	a.HandleFunc("/boletos/{id}/pagamento", h.MarkPending).Methods(http.MethodDelete)
	a.HandleFunc("/boletos/{id}/data-pagamento", h.SetPaymentDate).Methods(http.MethodPut)
	a.HandleFunc("/recorrencias/{groupId}", h.DeleteRecurrenceGroup).Methods(http.MethodDelete)

	// Lançamentos
	a.HandleFunc("/transacoes", h.ListTransactions).Methods(http.MethodGet)
	a.HandleFunc("/transacoes", h.CreateTransaction).Methods(http.MethodPost)
	a.HandleFunc("/transacoes/{id}", h.UpdateTransaction).Methods(http.MethodPut)
	a.HandleFunc("/transacoes/{id}", h.DeleteTransaction).Methods(http.MethodDelete)
	a.HandleFunc("/resumo", h.Summary).Methods(http.MethodGet)

	// Cadastros
	a.HandleFunc("/clientes", h.CreateClient).Methods(http.MethodPost)
	a.HandleFunc("/clientes/{id}", h.UpdateClient).Methods(http.MethodPut)
	a.HandleFunc("/clientes/{id}", h.DeleteClient).Methods(http.MethodDelete)
	a.HandleFunc("/representacoes", h.CreateRepresentation).Methods(http.MethodPost)
	a.HandleFunc("/representacoes/{id}", h.UpdateRepresentation).Methods(http.MethodPut)
	a.HandleFunc("/representacoes/{id}", h.DeleteRepresentation).Methods(http.MethodDelete)
	a.HandleFunc("/cotacoes", h.CreateQuotation).Methods(http.MethodPost)
	a.HandleFunc("/cotacoes/{id}", h.UpdateQuotation).Methods(http.MethodPut)
	a.HandleFunc("/cotacoes/{id}", h.DeleteQuotation).Methods(http.MethodDelete)
	a.HandleFunc("/sinistros", h.CreateClaim).Methods(http.MethodPost)
	a.HandleFunc("/sinistros/{id}", h.UpdateClaim).Methods(http.MethodPut)
	a.HandleFunc("/sinistros/{id}/status", h.UpdateClaimStatus).Methods(http.MethodPut)
	a.HandleFunc("/sinistros/{id}", h.DeleteClaim).Methods(http.MethodDelete)
	a.HandleFunc("/eventos", h.CreateEvent).Methods(http.MethodPost)
	a.HandleFunc("/eventos/{id}", h.UpdateEvent).Methods(http.MethodPut)
	a.HandleFunc("/eventos/{id}", h.DeleteEvent).Methods(http.MethodDelete)

	// Consultas externas, exportação e auditoria
	a.HandleFunc("/consultas/cnpj/{cnpj}", h.LookupCNPJ).Methods(http.MethodGet)
	a.HandleFunc("/consultas/placa/{placa}", h.LookupPlate).Methods(http.MethodGet)
	a.HandleFunc("/exportar/boletos", h.ExportBoletos).Methods(http.MethodGet)
	a.HandleFunc("/exportar/transacoes", h.ExportTransactions).Methods(http.MethodGet)
	a.HandleFunc("/auditoria", h.AuditLogs).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "rota não encontrada"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	})
	return recoverPanic(accessLog(c.Handler(r)))
}
