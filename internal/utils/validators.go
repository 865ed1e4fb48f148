package utils

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/ttacon/libphonenumber"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
)

// DefaultRegion é a região usada para interpretar telefones sem DDI.
const DefaultRegion = "BR"

// --- Validador de CNPJ / CPF ---

// IsValidCNPJ verifica se uma string de CNPJ (apenas dígitos) é válida.
func IsValidCNPJ(cnpj string) bool {
	if len(cnpj) != 14 || !onlyDigits(cnpj) || allDigitsEqual(cnpj) {
		return false
	}
	weights1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	weights2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(cnpj[:12], weights1) == int(cnpj[12]-'0') &&
		checkDigit(cnpj[:13], weights2) == int(cnpj[13]-'0')
}

// IsValidCPF verifica se uma string de CPF (apenas dígitos) é válida.
func IsValidCPF(cpf string) bool {
	if len(cpf) != 11 || !onlyDigits(cpf) || allDigitsEqual(cpf) {
		return false
	}
	weights1 := []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	weights2 := []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(cpf[:9], weights1) == int(cpf[9]-'0') &&
		checkDigit(cpf[:10], weights2) == int(cpf[10]-'0')
}

// IsValidDocumento aceita CPF (11 dígitos) ou CNPJ (14 dígitos).
func IsValidDocumento(doc string) bool {
	switch len(doc) {
	case 11:
		return IsValidCPF(doc)
	case 14:
		return IsValidCNPJ(doc)
	}
	return false
}

// checkDigit calcula o dígito verificador módulo 11.
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i := range weights {
		sum += int(digits[i]-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// allDigitsEqual verifica se todos os caracteres em uma string são iguais.
func allDigitsEqual(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func onlyDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// FormatCNPJ formata 14 dígitos como 00.000.000/0000-00.
func FormatCNPJ(cnpj string) string {
	if len(cnpj) != 14 {
		return cnpj
	}
	return cnpj[0:2] + "." + cnpj[2:5] + "." + cnpj[5:8] + "/" + cnpj[8:12] + "-" + cnpj[12:14]
}

// --- Placas ---

var (
	placaAntiga   = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	placaMercosul = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
)

// IsValidPlaca aceita o formato antigo (ABC1234) e o Mercosul (ABC1D23).
// A placa já deve estar normalizada (maiúsculas, sem hífen).
func IsValidPlaca(placa string) bool {
	return placaAntiga.MatchString(placa) || placaMercosul.MatchString(placa)
}

// --- Validador de E-mail ---

// ValidateEmail verifica se um e-mail é válido.
// Retorna nil se válido, ou um erro do tipo appErrors.ValidationError.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return appErrors.NewValidationError("E-mail é obrigatório.", map[string]string{"email": "obrigatório"})
	}
	if len(email) > 254 {
		return appErrors.NewValidationError("E-mail excede 254 caracteres.", map[string]string{"email": "muito longo"})
	}
	// ParseAddress não pode ter alterado o endereço (ex: removendo comentários).
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return appErrors.NewValidationError("Formato de e-mail inválido.", map[string]string{"email": "formato inválido"})
	}
	return nil
}

// --- Telefone ---

// NormalizePhone interpreta o telefone na região padrão e devolve o formato E.164.
func NormalizePhone(phone string) (string, error) {
	p, err := libphonenumber.Parse(strings.TrimSpace(phone), DefaultRegion)
	if err != nil {
		return "", appErrors.NewValidationError("Telefone inválido.", map[string]string{"telefone": err.Error()})
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", appErrors.NewValidationError("Telefone inválido.", map[string]string{"telefone": "número não é válido"})
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// --- Sanitização ---

// SanitizeInput remove caracteres de controle e colapsa espaços repetidos.
func SanitizeInput(inputStr string) string {
	if inputStr == "" {
		return ""
	}
	var sb strings.Builder
	lastWasSpace := false
	for _, r := range inputStr {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				sb.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			sb.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
