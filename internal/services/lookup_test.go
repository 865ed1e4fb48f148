package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

func TestFetchCNPJData(t *testing.T) {
	appLogger.Discard()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"cnpj": "11222333000181",
			"razao_social": "TRANSPORTES SILVA LTDA",
			"nome_fantasia": "SILVA LOG",
			"email": "FINANCEIRO@SILVA.COM.BR",
			"ddd_telefone_1": "1132345678",
			"logradouro": "RUA DAS FLORES",
			"numero": "100",
			"bairro": "CENTRO",
			"municipio": "SAO PAULO",
			"uf": "SP",
			"cep": "01001000",
			"qsa": [{"nome_socio": "JOSE DA SILVA"}]
		}`))
	}))
	defer srv.Close()

	lookup := NewCNPJLookup(srv.URL+"/api/cnpj/v1/", time.Second)
	data, err := lookup.FetchCNPJData(context.Background(), "11.222.333/0001-81")
	if err != nil {
		t.Fatalf("FetchCNPJData: %v", err)
	}
	if gotPath != "/api/cnpj/v1/11222333000181" {
		t.Errorf("caminho = %s", gotPath)
	}
	if data.CNPJ != "11.222.333/0001-81" || data.RazaoSocial != "TRANSPORTES SILVA LTDA" || data.NomeFantasia != "SILVA LOG" {
		t.Errorf("dados inesperados: %+v", data)
	}
	if data.Email != "financeiro@silva.com.br" || data.Phone != "+551132345678" || data.Responsavel != "JOSE DA SILVA" {
		t.Errorf("contato inesperado: %+v", data)
	}
	if data.Address != "RUA DAS FLORES, 100 - CENTRO - SAO PAULO/SP - CEP 01001000" {
		t.Errorf("endereço = %q", data.Address)
	}
}

func TestFetchCNPJDataFailures(t *testing.T) {
	appLogger.Discard()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "limite excedido", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	lookup := NewCNPJLookup(srv.URL, time.Second)
	if _, err := lookup.FetchCNPJData(context.Background(), "11.222.333/0001-82"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("dígito verificador errado deveria ser ErrValidation, veio %v", err)
	}
	if calls != 0 {
		t.Fatalf("CNPJ inválido não deveria chamar o provedor")
	}
	if _, err := lookup.FetchCNPJData(context.Background(), "11222333000181"); !errors.Is(err, core.ErrLookupUnavailable) {
		t.Fatalf("erro do provedor deveria ser ErrLookupUnavailable, veio %v", err)
	}

	down := NewCNPJLookup("http://127.0.0.1:1", 200*time.Millisecond)
	if _, err := down.FetchCNPJData(context.Background(), "11222333000181"); !errors.Is(err, core.ErrLookupUnavailable) {
		t.Fatalf("provedor fora do ar deveria ser ErrLookupUnavailable, veio %v", err)
	}
}

func TestConsultarPlaca(t *testing.T) {
	appLogger.Discard()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer segredo" {
			http.Error(w, "sem token", http.StatusUnauthorized)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/ABC1D23"):
			_, _ = w.Write([]byte(`{"placa":"ABC1D23","marca":"FIAT","modelo":"ARGO","ano":"2021","cor":"Prata","chassi":"9bd358a4nfyj12345","codigo_fipe":"001234-5","valor_fipe":"R$ 65.432,10"}`))
		case strings.HasSuffix(r.URL.Path, "/XYZ1234"):
			_, _ = w.Write([]byte(`{"placa":"XYZ1234","marca":"VW","ano":2010,"valor_fipe":30500.5}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	lookup := NewPlateLookup(srv.URL, "segredo", time.Second)
	ctx := context.Background()

	data, err := lookup.ConsultarPlaca(ctx, "abc-1d23")
	if err != nil {
		t.Fatalf("ConsultarPlaca: %v", err)
	}
	if data.Placa != "ABC1D23" || data.Marca != "FIAT" || data.Ano == nil || *data.Ano != 2021 || data.Chassi != "9BD358A4NFYJ12345" {
		t.Fatalf("dados inesperados: %+v", data)
	}
	if data.FipeValue == nil || !data.FipeValue.Equal(dec("65432.10")) {
		t.Fatalf("valor FIPE = %v", data.FipeValue)
	}

	data, err = lookup.ConsultarPlaca(ctx, "XYZ1234")
	if err != nil || data.Ano == nil || *data.Ano != 2010 || !data.FipeValue.Equal(dec("30500.5")) {
		t.Fatalf("resposta numérica: %+v, %v", data, err)
	}

	data, err = lookup.ConsultarPlaca(ctx, "QWE1234")
	if err != nil || data != nil {
		t.Fatalf("placa não encontrada deveria ser (nil, nil), veio %+v, %v", data, err)
	}

	if _, err := lookup.ConsultarPlaca(ctx, "1234ABC"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("placa inválida deveria ser ErrValidation, veio %v", err)
	}

	unconfigured := NewPlateLookup("", "", time.Second)
	if _, err := unconfigured.ConsultarPlaca(ctx, "ABC1234"); !errors.Is(err, core.ErrLookupUnavailable) {
		t.Fatalf("sem URL deveria ser ErrLookupUnavailable, veio %v", err)
	}
}
