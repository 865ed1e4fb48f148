package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewID gera um identificador opaco para as linhas do banco.
func NewID() string {
	return uuid.NewString()
}

// ParseMoney converte um valor monetário codificado como string.
// Aceita "1234.56" (formato do banco) e "1.234,56" (formato pt-BR).
func ParseMoney(valStr string) (decimal.Decimal, error) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(valStr), " ", "")
	trimmed = strings.TrimPrefix(trimmed, "R$")
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("valor monetário vazio")
	}
	// Se houver vírgula, ela é o separador decimal e os pontos são de milhar.
	if strings.Contains(trimmed, ",") {
		trimmed = strings.ReplaceAll(trimmed, ".", "")
		trimmed = strings.ReplaceAll(trimmed, ",", ".")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("valor monetário inválido '%s': %w", valStr, err)
	}
	return d, nil
}

// FormatMoney devolve o valor com duas casas decimais ("1234.50"), como é gravado no banco.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseOptionalMoney(valStr *string) (*decimal.Decimal, error) {
	if valStr == nil || strings.TrimSpace(*valStr) == "" {
		return nil, nil
	}
	d, err := ParseMoney(*valStr)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatOptionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := FormatMoney(*d)
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional devolve nil para strings vazias (colunas anuláveis).
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
