package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

func TestIsValidCNPJ(t *testing.T) {
	cases := map[string]bool{
		"11222333000181": true,
		"11222333000182": false,
		"11111111111111": false,
		"1122233300018":  false,
		"11a22333000181": false,
	}
	for in, want := range cases {
		if got := IsValidCNPJ(in); got != want {
			t.Errorf("IsValidCNPJ(%s) = %v, esperado %v", in, got, want)
		}
	}
}

func TestIsValidCPF(t *testing.T) {
	cases := map[string]bool{
		"52998224725": true,
		"52998224724": false,
		"00000000000": false,
		"5299822472":  false,
	}
	for in, want := range cases {
		if got := IsValidCPF(in); got != want {
			t.Errorf("IsValidCPF(%s) = %v, esperado %v", in, got, want)
		}
	}
	if !IsValidDocumento("52998224725") || !IsValidDocumento("11222333000181") || IsValidDocumento("123") {
		t.Errorf("IsValidDocumento deveria aceitar CPF e CNPJ válidos apenas")
	}
}

func TestIsValidPlaca(t *testing.T) {
	for _, p := range []string{"ABC1234", "ABC1D23"} {
		if !IsValidPlaca(p) {
			t.Errorf("%s deveria ser válida", p)
		}
	}
	for _, p := range []string{"ABC-1234", "abc1234", "AB1234", "ABCD123", ""} {
		if IsValidPlaca(p) {
			t.Errorf("%s não deveria ser válida", p)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("Fulano@Corretora.com.br"); err != nil {
		t.Fatalf("e-mail válido rejeitado: %v", err)
	}
	for _, in := range []string{"", "sem-arroba", "a@semponto", "Nome <a@b.com>"} {
		err := ValidateEmail(in)
		if !errors.Is(err, appErrors.ErrValidation) {
			t.Errorf("ValidateEmail(%q) = %v, esperado erro de validação", in, err)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("(11) 98765-4321")
	if err != nil {
		t.Fatalf("NormalizePhone: %v", err)
	}
	if got != "+5511987654321" {
		t.Fatalf("NormalizePhone = %s", got)
	}
	if _, err := NormalizePhone("123"); !errors.Is(err, appErrors.ErrValidation) {
		t.Fatalf("telefone curto deveria falhar com validação: %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  Rua\x00  das   Flores \n 10 "); got != "Rua das Flores 10" {
		t.Fatalf("SanitizeInput = %q", got)
	}
}

func TestFormatters(t *testing.T) {
	cases := map[string]string{
		"1234.5":     "R$ 1.234,50",
		"0":          "R$ 0,00",
		"999":        "R$ 999,00",
		"1234567.89": "R$ 1.234.567,89",
		"-10.5":      "R$ -10,50",
	}
	for in, want := range cases {
		if got := FormatBRL(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatBRL(%s) = %s, esperado %s", in, got, want)
		}
	}
	if got := FormatDateBR(types.MustParseDate("2024-03-05")); got != "05/03/2024" {
		t.Errorf("FormatDateBR = %s", got)
	}
	if FormatDateBR(types.Date{}) != "" {
		t.Errorf("data zero deveria formatar vazia")
	}
	if got := FormatCNPJ("11222333000181"); got != "11.222.333/0001-81" {
		t.Errorf("FormatCNPJ = %s", got)
	}
	if got := RemoveAccents("Comissão Esperada é ótima"); got != "Comissao Esperada e otima" {
		t.Errorf("RemoveAccents = %s", got)
	}
	if got := SheetName("Boletos/2024: [jan]"); got != "Boletos_2024_ _jan_" {
		t.Errorf("SheetName = %s", got)
	}
}

func TestSliceDataInputRejectsRaggedRows(t *testing.T) {
	_, err := NewSliceDataInput("x", []string{"a", "b"}, [][]string{{"1"}})
	if !errors.Is(err, appErrors.ErrInvalidInput) {
		t.Fatalf("esperado ErrInvalidInput, obtido %v", err)
	}
}

func TestWriteXLSX(t *testing.T) {
	boletos, err := NewSliceDataInput("Boletos", []string{"Cliente", "Documento", "Valor"}, [][]string{
		{"Maria", "529.982.247-25", "R$ 100,00"},
		{"José", "11.222.333/0001-81", "R$ 2.000,00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	vazio, _ := NewSliceDataInput("Transações", []string{"Descrição"}, nil)

	var buf bytes.Buffer
	opts := &ExportOptions{SanitizeColumns: []string{"documento"}, ColumnWidths: map[string]float64{"Cliente": 30}}
	if err := WriteXLSX(&buf, []DataInput{boletos, vazio}, opts); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != "Boletos" || sheets[1] != "Transações" {
		t.Fatalf("planilhas = %v", sheets)
	}
	rows, err := f.GetRows("Boletos")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[2][0] != "José" || rows[2][2] != "R$ 2.000,00" {
		t.Fatalf("linhas = %v", rows)
	}
	if rows[1][1] != "***.***.***-**" || rows[2][1] != "**.***.***/****-**" {
		t.Fatalf("documentos não mascarados: %v", rows)
	}
}

func TestWriteCSVUsesWindows1252(t *testing.T) {
	in, _ := NewSliceDataInput("x", []string{"Descrição", "Valor"}, [][]string{{"Comissão", "R$ 1,00"}})
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Descri\xe7\xe3o;Valor") || !strings.Contains(out, "Comiss\xe3o;R$ 1,00") {
		t.Fatalf("saída CSV inesperada: %q", out)
	}
}
