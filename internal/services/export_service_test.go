package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
)

func TestParseExportFormat(t *testing.T) {
	cases := map[string]ExportFormat{"": FormatXLSX, "XLSX": FormatXLSX, " csv ": FormatCSV}
	for in, want := range cases {
		got, err := ParseExportFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseExportFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseExportFormat("pdf"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("formato inválido deveria ser ErrValidation, veio %v", err)
	}
}

func TestExportBoletosXLSX(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	clientID := env.seedClient(t, "Maria")

	in := boletoInput(clientID, "2024-02-10")
	in.Observacao = "CPF do segurado 123.456.789-09"
	if _, err := env.svc.Boletos.CreateBoleto(ctx, testUser, in); err != nil {
		t.Fatalf("CreateBoleto: %v", err)
	}
	if _, err := env.svc.Boletos.CreateBoleto(ctx, testUser, boletoInput(clientID, "2024-03-20")); err != nil {
		t.Fatalf("CreateBoleto: %v", err)
	}

	var buf bytes.Buffer
	if err := env.svc.Export.ExportBoletos(ctx, testUser, &buf, FormatXLSX); err != nil {
		t.Fatalf("ExportBoletos: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Boletos")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("esperava cabeçalho + 2 linhas, veio %d", len(rows))
	}
	if rows[0][0] != "Vencimento" || rows[0][9] != "Observação" {
		t.Errorf("cabeçalho inesperado: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "10/02/2024" || first[1] != "Maria" || first[2] != "ABC1D23" || first[3] != "R$ 1.000,00" {
		t.Errorf("linha inesperada: %v", first)
	}
	if first[4] != "Vencido" || first[7] != "10,00%" {
		t.Errorf("status/comissão inesperados: %v", first)
	}
	if first[9] != "CPF do segurado ***.***.***-**" {
		t.Errorf("observação deveria sair mascarada, veio %q", first[9])
	}
	if rows[2][0] != "20/03/2024" || rows[2][4] != "Pendente" {
		t.Errorf("segunda linha inesperada: %v", rows[2])
	}
}

func TestExportTransactionsCSV(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	clientID := env.seedClient(t, "José")

	if _, err := env.svc.Boletos.CreateBoleto(ctx, testUser, boletoInput(clientID, "2024-03-20")); err != nil {
		t.Fatalf("CreateBoleto: %v", err)
	}

	var buf bytes.Buffer
	if err := env.svc.Export.ExportTransactions(ctx, testUser, &buf, FormatCSV); err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}

	reader := csv.NewReader(charmap.Windows1252.NewDecoder().Reader(&buf))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("CSV ilegível: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("esperava cabeçalho + 1 lançamento, veio %d", len(records))
	}
	if records[0][2] != "Descrição" || records[0][5] != "Comissão" {
		t.Errorf("cabeçalho mal codificado: %v", records[0])
	}
	row := records[1]
	if row[0] != "01/04/2024" || row[1] != "Receita" || row[4] != "R$ 100,00" || row[5] != "Prevista" {
		t.Errorf("lançamento inesperado: %v", row)
	}
}
