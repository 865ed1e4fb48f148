package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/utils"
)

// PlateData são os dados de veículo devolvidos pela consulta de placa.
type PlateData struct {
	Placa     string           `json:"placa"`
	Marca     string           `json:"marca,omitempty"`
	Modelo    string           `json:"modelo,omitempty"`
	Ano       *int             `json:"ano,omitempty"`
	Cor       string           `json:"cor,omitempty"`
	Chassi    string           `json:"chassi,omitempty"`
	FipeCode  string           `json:"fipeCode,omitempty"`
	FipeValue *decimal.Decimal `json:"fipeValue,omitempty"`
	Categoria string           `json:"categoria,omitempty"`
}

// PlateLookup consulta dados de um veículo pela placa (formato antigo ou Mercosul).
// Placa não encontrada devolve (nil, nil).
type PlateLookup interface {
	ConsultarPlaca(ctx context.Context, placa string) (*PlateData, error)
}

type httpPlateLookup struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewPlateLookup cria o cliente de consulta de placas. Sem URL configurada,
// toda consulta responde ErrLookupUnavailable.
func NewPlateLookup(baseURL, token string, timeout time.Duration) PlateLookup {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpPlateLookup{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: timeout},
	}
}

type plateAPIResponse struct {
	Placa     string          `json:"placa"`
	Marca     string          `json:"marca"`
	Modelo    string          `json:"modelo"`
	Ano       json.Number     `json:"ano"`
	Cor       string          `json:"cor"`
	Chassi    string          `json:"chassi"`
	FipeCode  string          `json:"codigo_fipe"`
	FipeValue json.RawMessage `json:"valor_fipe"`
	Categoria string          `json:"categoria"`
}

func (l *httpPlateLookup) ConsultarPlaca(ctx context.Context, placa string) (*PlateData, error) {
	normalized := models.NormalizePlaca(placa)
	if !utils.IsValidPlaca(normalized) {
		return nil, appErrors.NewValidationError("Placa inválida.", map[string]string{"placa": "use o formato AAA0000 ou AAA0A00"})
	}
	if l.baseURL == "" {
		return nil, fmt.Errorf("%w: consulta de placa não configurada", appErrors.ErrLookupUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+normalized, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrLookupUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if l.token != "" {
		req.Header.Set("Authorization", "Bearer "+l.token)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		appLogger.Warnf("Consulta da placa %s falhou: %v", normalized, err)
		return nil, fmt.Errorf("%w: %v", appErrors.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		appLogger.Debugf("Placa %s não encontrada no provedor", normalized)
		return nil, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appLogger.Warnf("Consulta da placa %s retornou status %d", normalized, resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d para placa %s", appErrors.ErrLookupUnavailable, resp.StatusCode, normalized)
	}

	var parsed plateAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: resposta inválida: %v", appErrors.ErrLookupUnavailable, err)
	}
	return parsed.toPlateData(normalized), nil
}

func (r plateAPIResponse) toPlateData(placa string) *PlateData {
	data := &PlateData{
		Placa:     placa,
		Marca:     strings.TrimSpace(r.Marca),
		Modelo:    strings.TrimSpace(r.Modelo),
		Cor:       strings.TrimSpace(r.Cor),
		Chassi:    strings.ToUpper(strings.TrimSpace(r.Chassi)),
		FipeCode:  strings.TrimSpace(r.FipeCode),
		Categoria: strings.TrimSpace(r.Categoria),
	}
	if n, err := r.Ano.Int64(); err == nil && n > 0 {
		ano := int(n)
		data.Ano = &ano
	}
	// valor_fipe vem como número ou como texto "R$ 45.000,00"
	if raw := strings.TrimSpace(string(r.FipeValue)); raw != "" && raw != "null" {
		var text string
		if err := json.Unmarshal(r.FipeValue, &text); err != nil {
			text = raw
		} else if strings.Contains(text, ",") {
			text = strings.NewReplacer("R$", "", ".", "", ",", ".", " ", "").Replace(text)
		}
		if v, err := decimal.NewFromString(strings.TrimSpace(text)); err == nil {
			data.FipeValue = &v
		}
	}
	return data
}
