package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/utils"
)

// CNPJData são os dados cadastrais usados para preencher um cliente pessoa jurídica.
type CNPJData struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razaoSocial"`
	NomeFantasia string `json:"nomeFantasia,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Responsavel  string `json:"responsavel,omitempty"`
}

// CNPJLookup consulta dados públicos de um CNPJ.
// Qualquer falha do provedor vira ErrLookupUnavailable; quem chama cai para o preenchimento manual.
type CNPJLookup interface {
	FetchCNPJData(ctx context.Context, cnpj string) (*CNPJData, error)
}

type brasilAPICNPJLookup struct {
	baseURL string
	http    *http.Client
}

// NewCNPJLookup cria o cliente de consulta de CNPJ sobre uma API compatível com a BrasilAPI.
func NewCNPJLookup(baseURL string, timeout time.Duration) CNPJLookup {
	if strings.TrimSpace(baseURL) == "" {
		appLogger.Fatalf("URL da API de CNPJ não configurada para NewCNPJLookup")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &brasilAPICNPJLookup{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// resposta da BrasilAPI (apenas os campos usados)
type brasilAPICNPJResponse struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Email        string `json:"email"`
	Telefone     string `json:"ddd_telefone_1"`
	Logradouro   string `json:"logradouro"`
	Numero       string `json:"numero"`
	Complemento  string `json:"complemento"`
	Bairro       string `json:"bairro"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
	CEP          string `json:"cep"`
	QSA          []struct {
		NomeSocio string `json:"nome_socio"`
	} `json:"qsa"`
}

func (l *brasilAPICNPJLookup) FetchCNPJData(ctx context.Context, cnpj string) (*CNPJData, error) {
	// 1. Validar antes de chamar o provedor
	digits := models.CleanDocumento(cnpj)
	if !utils.IsValidCNPJ(digits) {
		return nil, appErrors.NewValidationError("CNPJ inválido (dígitos verificadores não conferem).", map[string]string{"cnpj": "CNPJ inválido."})
	}

	// 2. Consultar
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+digits, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrLookupUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		appLogger.Warnf("Consulta de CNPJ %s falhou: %v", digits, err)
		return nil, fmt.Errorf("%w: %v", appErrors.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appLogger.Warnf("Consulta de CNPJ %s retornou status %d", digits, resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d para CNPJ %s", appErrors.ErrLookupUnavailable, resp.StatusCode, digits)
	}

	// 3. Converter
	var parsed brasilAPICNPJResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: resposta inválida: %v", appErrors.ErrLookupUnavailable, err)
	}
	if strings.TrimSpace(parsed.RazaoSocial) == "" {
		return nil, fmt.Errorf("%w: resposta sem razão social", appErrors.ErrLookupUnavailable)
	}
	return parsed.toCNPJData(digits), nil
}

func (r brasilAPICNPJResponse) toCNPJData(digits string) *CNPJData {
	data := &CNPJData{
		CNPJ:         utils.FormatCNPJ(digits),
		RazaoSocial:  strings.TrimSpace(r.RazaoSocial),
		NomeFantasia: strings.TrimSpace(r.NomeFantasia),
		Email:        strings.ToLower(strings.TrimSpace(r.Email)),
		Address:      r.address(),
	}
	if r.Telefone != "" {
		if phone, err := utils.NormalizePhone(r.Telefone); err == nil {
			data.Phone = phone
		} else {
			data.Phone = strings.TrimSpace(r.Telefone)
		}
	}
	if len(r.QSA) > 0 {
		data.Responsavel = strings.TrimSpace(r.QSA[0].NomeSocio)
	}
	return data
}

func (r brasilAPICNPJResponse) address() string {
	var parts []string
	street := strings.TrimSpace(r.Logradouro)
	if n := strings.TrimSpace(r.Numero); n != "" && street != "" {
		street += ", " + n
	}
	for _, p := range []string{street, r.Complemento, r.Bairro} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	city := strings.TrimSpace(r.Municipio)
	if uf := strings.TrimSpace(r.UF); uf != "" {
		if city != "" {
			city += "/" + uf
		} else {
			city = uf
		}
	}
	if city != "" {
		parts = append(parts, city)
	}
	if cep := strings.TrimSpace(r.CEP); cep != "" {
		parts = append(parts, "CEP "+cep)
	}
	return strings.Join(parts, " - ")
}

