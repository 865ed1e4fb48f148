package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/utils"
)

// ExportFormat é o formato de arquivo gerado pela exportação.
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
)

// ContentType devolve o MIME type do formato.
func (f ExportFormat) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=windows-1252"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ParseExportFormat aceita "xlsx" (padrão quando vazio) ou "csv".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", appErrors.NewValidationError("Formato de exportação inválido.", map[string]string{"format": "use xlsx ou csv"})
}

// ExportService gera planilhas a partir do snapshot apresentado (status overdue já derivado).
type ExportService interface {
	ExportBoletos(ctx context.Context, userID string, w io.Writer, format ExportFormat) error
	ExportTransactions(ctx context.Context, userID string, w io.Writer, format ExportFormat) error
}

type exportServiceImpl struct {
	store SnapshotStore
}

// NewExportService cria uma nova instância de ExportService.
func NewExportService(store SnapshotStore) ExportService {
	if store == nil {
		appLogger.Fatalf("SnapshotStore nulo fornecido para NewExportService")
	}
	return &exportServiceImpl{store: store}
}

var boletoStatusLabels = map[models.BoletoStatus]string{
	models.BoletoPending: "Pendente",
	models.BoletoPaid:    "Pago",
	models.BoletoOverdue: "Vencido",
}

var boletoExportOptions = &utils.ExportOptions{
	SanitizeColumns: []string{"Observação"},
	ColumnWidths: map[string]float64{
		"Cliente": 32, "Placas": 20, "Representação": 24, "Observação": 40,
	},
}

var transactionExportOptions = &utils.ExportOptions{
	SanitizeColumns: []string{"Descrição"},
	ColumnWidths:    map[string]float64{"Descrição": 40, "Categoria": 24},
}

func (s *exportServiceImpl) ExportBoletos(ctx context.Context, userID string, w io.Writer, format ExportFormat) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	snap, err := s.store.GetSnapshot(ctx, userID)
	if err != nil {
		return err
	}

	boletos := append([]models.Boleto(nil), snap.Boletos...)
	sort.SliceStable(boletos, func(i, j int) bool { return boletos[i].Vencimento.Before(boletos[j].Vencimento) })

	headers := []string{"Vencimento", "Cliente", "Placas", "Valor", "Status", "Pagamento", "Representação", "Comissão", "Recorrência", "Observação"}
	rows := make([][]string, 0, len(boletos))
	for _, b := range boletos {
		pagamento := ""
		if b.DataPagamento != nil {
			pagamento = utils.FormatDateBR(*b.DataPagamento)
		}
		rows = append(rows, []string{
			utils.FormatDateBR(b.Vencimento),
			b.ClientName,
			strings.Join(b.Placas, ", "),
			utils.FormatBRL(b.Valor),
			boletoStatusLabels[b.Status],
			pagamento,
			b.Representacao,
			commissionLabel(b),
			recurrenceLabel(b),
			b.Observacao,
		})
	}

	input, err := utils.NewSliceDataInput("Boletos", headers, rows)
	if err != nil {
		return err
	}
	appLogger.Infof("Exportando %d boletos (%s) para usuário %s", len(rows), format, userID)
	return writeExport(w, format, input, boletoExportOptions)
}

func (s *exportServiceImpl) ExportTransactions(ctx context.Context, userID string, w io.Writer, format ExportFormat) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	snap, err := s.store.GetSnapshot(ctx, userID)
	if err != nil {
		return err
	}

	txs := append([]models.Transaction(nil), snap.Transactions...)
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Data.Before(txs[j].Data) })

	headers := []string{"Data", "Tipo", "Descrição", "Categoria", "Valor", "Comissão"}
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		tipo := "Receita"
		if t.Tipo == models.TransactionExpense {
			tipo = "Despesa"
		}
		kind := ""
		switch t.CommissionKind {
		case models.CommissionExpected:
			kind = "Prevista"
		case models.CommissionConfirmed:
			kind = "Confirmada"
		}
		rows = append(rows, []string{
			utils.FormatDateBR(t.Data),
			tipo,
			t.Descricao,
			t.Categoria,
			utils.FormatBRL(t.Valor),
			kind,
		})
	}

	input, err := utils.NewSliceDataInput("Transações", headers, rows)
	if err != nil {
		return err
	}
	appLogger.Infof("Exportando %d lançamentos (%s) para usuário %s", len(rows), format, userID)
	return writeExport(w, format, input, transactionExportOptions)
}

func writeExport(w io.Writer, format ExportFormat, input utils.DataInput, opts *utils.ExportOptions) error {
	if format == FormatCSV {
		return utils.WriteCSV(w, input, opts)
	}
	return utils.WriteXLSX(w, []utils.DataInput{input}, opts)
}

func commissionLabel(b models.Boleto) string {
	if !b.HasCommission() {
		return ""
	}
	if b.ComissaoTipo == models.CommissionPercent {
		return utils.FormatDecimalBR(*b.ComissaoRecorrente) + "%"
	}
	return utils.FormatBRL(*b.ComissaoRecorrente)
}

func recurrenceLabel(b models.Boleto) string {
	if !b.IsRecurring {
		return ""
	}
	if b.RecurrenceType == models.RecurrenceLimited && b.RecurrenceMonths != nil {
		return fmt.Sprintf("%d meses", *b.RecurrenceMonths)
	}
	return "Indeterminada"
}
