package utils

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

// FormatBRL formata um valor como moeda brasileira ("R$ 1.234,50").
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + FormatDecimalBR(d)
}

// FormatDecimalBR formata com duas casas, vírgula decimal e ponto de milhar.
func FormatDecimalBR(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var sb strings.Builder
	if d.IsNegative() {
		sb.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte(',')
	sb.WriteString(frac)
	return sb.String()
}

// FormatDateBR formata a data como DD/MM/AAAA; data zero vira "".
func FormatDateBR(d types.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Time(nil).Format("02/01/2006")
}

// RemoveAccents remove acentos ("Comissão" -> "Comissao").
func RemoveAccents(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		return str
	}
	return result
}

// SheetName limpa um nome para uso como aba de planilha (máx. 31 caracteres,
// sem : \ / ? * [ ]).
func SheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		cleaned = "Dados"
	}
	if r := []rune(cleaned); len(r) > 31 {
		cleaned = string(r[:31])
	}
	return cleaned
}
