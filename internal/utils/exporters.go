package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2" // Para XLSX
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

// DataInput abstrai a fonte dos dados de exportação.
type DataInput interface {
	Headers() []string
	Rows() [][]string
	GetSheetName() string // Nome da planilha (para Excel com múltiplas abas)
}

// SliceDataInput é uma implementação de DataInput para cabeçalho + linhas.
type SliceDataInput struct {
	headers   []string
	rows      [][]string
	sheetName string
}

// NewSliceDataInput cria um DataInput. Linhas com número de colunas diferente
// do cabeçalho são rejeitadas.
func NewSliceDataInput(sheetName string, headers []string, rows [][]string) (*SliceDataInput, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: nenhum cabeçalho fornecido para exportação", appErrors.ErrInvalidInput)
	}
	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("%w: linha %d tem %d colunas, esperado %d", appErrors.ErrInvalidInput, i+1, len(row), len(headers))
		}
	}
	return &SliceDataInput{headers: headers, rows: rows, sheetName: SheetName(sheetName)}, nil
}

func (s *SliceDataInput) Headers() []string    { return s.headers }
func (s *SliceDataInput) Rows() [][]string     { return s.rows }
func (s *SliceDataInput) GetSheetName() string { return s.sheetName }

// --- Sanitização ---
var (
	cpfRegex   = regexp.MustCompile(`\b(\d{3}[.-]?\d{3}[.-]?\d{3}-?\d{2})\b`)
	cnpjRegex  = regexp.MustCompile(`\b(\d{2}[.-]?\d{3}[.-]?\d{3}/?\d{4}-?\d{2})\b`)
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

func sanitizeString(s string) string {
	// CNPJ antes do CPF: os 11 primeiros dígitos de um CNPJ também casam com o CPF.
	s = cnpjRegex.ReplaceAllString(s, "**.***.***/****-**")
	s = cpfRegex.ReplaceAllString(s, "***.***.***-**")
	s = emailRegex.ReplaceAllString(s, "****@****.***")
	return s
}

func sanitizeData(headers []string, rows [][]string, sanitizeColumns []string) [][]string {
	if len(sanitizeColumns) == 0 || len(rows) == 0 {
		return rows
	}

	colIndicesToSanitize := make(map[int]bool)
	for _, colName := range sanitizeColumns {
		found := false
		for i, h := range headers {
			if strings.EqualFold(h, colName) {
				colIndicesToSanitize[i] = true
				found = true
				break
			}
		}
		if !found {
			appLogger.Warnf("Coluna de sanitização '%s' não encontrada nos cabeçalhos. Ignorando.", colName)
		}
	}
	if len(colIndicesToSanitize) == 0 {
		return rows
	}

	sanitizedRows := make([][]string, len(rows))
	for i, row := range rows {
		newRow := make([]string, len(row))
		copy(newRow, row)
		for colIdx := range row {
			if colIndicesToSanitize[colIdx] {
				newRow[colIdx] = sanitizeString(row[colIdx])
			}
		}
		sanitizedRows[i] = newRow
	}
	return sanitizedRows
}

// ExportOptions contém opções para a exportação.
type ExportOptions struct {
	SanitizeColumns []string           // Nomes das colunas a serem mascaradas
	ColumnWidths    map[string]float64 // cabeçalho -> largura (só XLSX)
}

// WriteCSV escreve uma única tabela em CSV com ';' e codificação Windows-1252,
// que o Excel em pt-BR abre sem quebrar acentos.
func WriteCSV(w io.Writer, input DataInput, opts *ExportOptions) error {
	if opts == nil {
		opts = &ExportOptions{}
	}
	encoded := transform.NewWriter(w, charmap.Windows1252.NewEncoder())
	writer := csv.NewWriter(encoded)
	writer.Comma = ';'

	headers := input.Headers()
	if err := writer.Write(headers); err != nil {
		return appErrors.WrapErrorf(err, "falha ao escrever cabeçalhos CSV")
	}
	for _, row := range sanitizeData(headers, input.Rows(), opts.SanitizeColumns) {
		if err := writer.Write(row); err != nil {
			return appErrors.WrapErrorf(err, "falha ao escrever linha CSV")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return appErrors.WrapErrorf(err, "falha ao dar flush no writer CSV")
	}
	if err := encoded.Close(); err != nil {
		return appErrors.WrapErrorf(err, "falha ao codificar CSV em Windows-1252")
	}
	return nil
}

// WriteXLSX escreve uma planilha por DataInput e grava o arquivo em w.
func WriteXLSX(w io.Writer, inputs []DataInput, opts *ExportOptions) error {
	if opts == nil {
		opts = &ExportOptions{}
	}
	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			appLogger.Errorf("Erro ao fechar arquivo XLSX: %v", err)
		}
	}()

	headerStyle, err := xlsx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1A659E"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11, Family: "Segoe UI"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "FFFFFF", Style: 1},
		},
	})
	if err != nil {
		return appErrors.WrapErrorf(err, "falha ao criar estilo do cabeçalho")
	}

	if len(inputs) == 0 {
		if err := xlsx.SetCellValue("Sheet1", "A1", "Nenhum dado para exportar."); err != nil {
			return appErrors.WrapErrorf(err, "falha ao escrever planilha vazia")
		}
	}

	for i, input := range inputs {
		sheetName := input.GetSheetName()
		if sheetName == "" {
			sheetName = fmt.Sprintf("Planilha%d", i+1)
		}
		// Excelize cria "Sheet1" por padrão; a primeira entrada a reaproveita.
		if i == 0 {
			if err := xlsx.SetSheetName("Sheet1", sheetName); err != nil {
				return appErrors.WrapErrorf(err, "falha ao renomear planilha para '%s'", sheetName)
			}
		} else if _, err := xlsx.NewSheet(sheetName); err != nil {
			return appErrors.WrapErrorf(err, "falha ao criar nova planilha '%s'", sheetName)
		}

		headers := input.Headers()
		if err := writeSheetRow(xlsx, sheetName, 1, headers); err != nil {
			return err
		}
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := xlsx.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
			return appErrors.WrapErrorf(err, "falha ao aplicar estilo do cabeçalho")
		}

		for rowIdx, rowData := range sanitizeData(headers, input.Rows(), opts.SanitizeColumns) {
			if err := writeSheetRow(xlsx, sheetName, rowIdx+2, rowData); err != nil { // +2: cabeçalho está na linha 1
				return err
			}
		}

		for colIdx, header := range headers {
			width, ok := opts.ColumnWidths[header]
			if !ok {
				continue
			}
			colLetter, _ := excelize.ColumnNumberToName(colIdx + 1)
			if err := xlsx.SetColWidth(sheetName, colLetter, colLetter, width); err != nil {
				return appErrors.WrapErrorf(err, "falha ao ajustar largura da coluna %s", header)
			}
		}
	}

	if err := xlsx.Write(w); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrExport, err)
	}
	return nil
}

func writeSheetRow(xlsx *excelize.File, sheetName string, row int, values []string) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := xlsx.SetSheetRow(sheetName, cell, &cells); err != nil {
		return appErrors.WrapErrorf(err, "falha ao escrever linha %d da planilha '%s'", row, sheetName)
	}
	return nil
}
