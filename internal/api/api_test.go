package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/auth"
	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/datatest"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/services"
)

var fixedNow = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	appLogger.Discard()
	clock := services.Clock(func() time.Time { return fixedNow })
	repos := repositories.NewGormRepositories(datatest.Open(t))
	cfg := &appErrors.Config{CNPJAPIURL: "http://127.0.0.1:1/cnpj", LookupTimeout: 200 * time.Millisecond}
	svc := services.New(repos, services.SnapshotStoreOptions{}, cfg, clock)

	tokens := auth.NewTokenManager("segredo-de-teste-com-mais-de-32-caracteres", "corretora", time.Hour)
	token, err := tokens.GerarToken("user-1")
	if err != nil {
		t.Fatalf("GerarToken: %v", err)
	}
	return &testServer{
		handler: NewRouter(svc, tokens, []string{"http://localhost:5173"}, clock),
		token:   token,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) models.Snapshot {
	t.Helper()
	var snap models.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("snapshot inválido: %v (%s)", err, rec.Body.String())
	}
	return snap
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("corpo de erro inválido: %v (%s)", err, rec.Body.String())
	}
	return body
}

func (s *testServer) seedClient(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/clientes", map[string]interface{}{
		"nome":     "Maria Souza",
		"vehicles": []map[string]string{{"placa": "ABC1D23"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("criar cliente: %d %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if len(snap.Clients) != 1 {
		t.Fatalf("esperava 1 cliente, veio %d", len(snap.Clients))
	}
	return snap.Clients[0].ID
}

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("/healthz = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("sem token deveria ser 401, veio %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/snapshot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot = %d %s", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec); snap.UserID != "user-1" {
		t.Fatalf("snapshot de outro usuário: %q", snap.UserID)
	}

	rec = s.do(t, http.MethodGet, "/api/nada", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("rota desconhecida = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/boletos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	if rec.Code >= 300 {
		t.Fatalf("preflight = %d", rec.Code)
	}
}

func TestBoletoPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	clientID := s.seedClient(t)

	rec := s.do(t, http.MethodPost, "/api/boletos", map[string]interface{}{
		"clientId":           clientID,
		"placas":             []string{"ABC1D23"},
		"valor":              1000,
		"vencimento":         "2024-03-10",
		"commissionDay":      5,
		"comissaoRecorrente": 10,
		"comissaoTipo":       "percentual",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("criar boleto: %d %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if len(snap.Boletos) != 1 || len(snap.Transactions) != 1 {
		t.Fatalf("esperava 1 boleto e 1 comissão prevista, veio %d/%d", len(snap.Boletos), len(snap.Transactions))
	}
	boletoID := snap.Boletos[0].ID
	if snap.Transactions[0].CommissionKind != models.CommissionExpected || snap.Transactions[0].Data.String() != "2024-04-05" {
		t.Fatalf("comissão prevista inesperada: %+v", snap.Transactions[0])
	}

	rec = s.do(t, http.MethodPost, "/api/boletos/"+boletoID+"/pagamento", map[string]string{"dataPagamento": "2024-03-08"})
	if rec.Code != http.StatusOK {
		t.Fatalf("marcar pago: %d %s", rec.Code, rec.Body.String())
	}
	snap = decodeSnapshot(t, rec)
	if snap.Boletos[0].Status != models.BoletoPaid || len(snap.Transactions) != 1 || snap.Transactions[0].CommissionKind != models.CommissionConfirmed {
		t.Fatalf("pagamento não confirmou a comissão: %+v", snap.Transactions)
	}

	// a comissão confirmada não pode ser editada como lançamento manual
	rec = s.do(t, http.MethodDelete, "/api/transacoes/"+snap.Transactions[0].ID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("excluir comissão deveria ser 400, veio %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodDelete, "/api/boletos/"+boletoID+"/pagamento", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("voltar para pendente: %d %s", rec.Code, rec.Body.String())
	}
	snap = decodeSnapshot(t, rec)
	if snap.Boletos[0].Status != models.BoletoPending || snap.Transactions[0].CommissionKind != models.CommissionExpected {
		t.Fatalf("reversão inesperada: %+v / %+v", snap.Boletos[0], snap.Transactions)
	}

	rec = s.do(t, http.MethodGet, "/api/resumo?ano=2024&mes=4", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("resumo: %d %s", rec.Code, rec.Body.String())
	}
	var summary struct {
		ExpectedCommission json.Number `json:"expectedCommission"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil || summary.ExpectedCommission.String() != "100" {
		t.Fatalf("resumo inesperado: %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodDelete, "/api/boletos/"+boletoID+"?scope=todos", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("escopo inválido deveria ser 400, veio %d", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, "/api/boletos/"+boletoID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("excluir boleto: %d %s", rec.Code, rec.Body.String())
	}
	if snap = decodeSnapshot(t, rec); len(snap.Boletos) != 0 || len(snap.Transactions) != 0 {
		t.Fatalf("exclusão deixou %d boletos e %d lançamentos", len(snap.Boletos), len(snap.Transactions))
	}

	rec = s.do(t, http.MethodGet, "/api/auditoria?entidade="+boletoID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("auditoria: %d %s", rec.Code, rec.Body.String())
	}
	var logs auditLogsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil || logs.Total == 0 {
		t.Fatalf("esperava entradas de auditoria para o boleto: %s", rec.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		field  string
	}{
		{"validação com campos", http.MethodPost, "/api/boletos", map[string]interface{}{"valor": 0}, http.StatusBadRequest, "valor"},
		{"JSON inválido", http.MethodPost, "/api/clientes", "não é objeto", http.StatusBadRequest, ""},
		{"não encontrado", http.MethodDelete, "/api/transacoes/nao-existe", nil, http.StatusNotFound, ""},
		{"resumo com mês inválido", http.MethodGet, "/api/resumo?mes=abc", nil, http.StatusBadRequest, "mes"},
		{"formato de exportação", http.MethodGet, "/api/exportar/boletos?formato=pdf", nil, http.StatusBadRequest, "format"},
		{"placa sem provedor", http.MethodGet, "/api/consultas/placa/ABC1234", nil, http.StatusServiceUnavailable, ""},
		{"placa inválida", http.MethodGet, "/api/consultas/placa/12", nil, http.StatusBadRequest, "placa"},
		{"cnpj inválido", http.MethodGet, "/api/consultas/cnpj/11222333000182", nil, http.StatusBadRequest, "cnpj"},
		{"auditoria com data inválida", http.MethodGet, "/api/auditoria?inicio=ontem", nil, http.StatusBadRequest, "inicio"},
		{"status de sinistro", http.MethodPut, "/api/sinistros/x/status", map[string]string{"status": "arquivado"}, http.StatusBadRequest, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, esperado %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			body := decodeError(t, rec)
			if body.Error == "" {
				t.Fatalf("corpo sem mensagem de erro")
			}
			if tt.field != "" {
				if _, ok := body.Fields[tt.field]; !ok {
					t.Fatalf("esperava erro no campo %q, veio %v", tt.field, body.Fields)
				}
			}
		})
	}
}

func TestSummaryQueryDefaults(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query     string
		wantYear  int
		wantMonth int
	}{
		{"", 2024, 3},
		{"?mes=4", 2024, 4},
		{"?ano=2023", 2023, 3},
		{"?ano=2025&mes=12", 2025, 12},
	}
	for _, tt := range tests {
		rec := s.do(t, http.MethodGet, "/api/resumo"+tt.query, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: %d %s", tt.query, rec.Code, rec.Body.String())
		}
		var got struct {
			Year  int `json:"year"`
			Month int `json:"month"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("%q: %v", tt.query, err)
		}
		if got.Year != tt.wantYear || got.Month != tt.wantMonth {
			t.Errorf("%q: resumo de %d/%d, esperava %d/%d", tt.query, got.Month, got.Year, tt.wantMonth, tt.wantYear)
		}
	}

	rec := s.do(t, http.MethodGet, "/api/resumo?ano=dois-mil&mes=4", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ano inválido deveria ser 400, veio %d", rec.Code)
	}
	body := decodeError(t, rec)
	if _, ok := body.Fields["ano"]; !ok || len(body.Fields) != 1 {
		t.Fatalf("esperava erro só no campo ano, veio %v", body.Fields)
	}
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.seedClient(t)

	rec := s.do(t, http.MethodGet, "/api/exportar/transacoes?formato=csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("exportar: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="transacoes-2024-03-01.csv"` {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	rec = s.do(t, http.MethodGet, "/api/exportar/boletos", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("xlsx: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("arquivo xlsx vazio")
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{appErrors.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("x: %w", appErrors.ErrTokenExpired), http.StatusUnauthorized},
		{appErrors.NewValidationError("inválido", nil), http.StatusBadRequest},
		{appErrors.ErrInvalidInput, http.StatusBadRequest},
		{appErrors.WrapErrorf(appErrors.ErrNotFound, "boleto"), http.StatusNotFound},
		{appErrors.ErrConflict, http.StatusConflict},
		{appErrors.ErrLookupUnavailable, http.StatusServiceUnavailable},
		{errors.New("qualquer"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v) = %d, esperado %d", c.err, got, c.want)
		}
	}
}
