package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// Summary é o resumo financeiro de um mês.
type Summary struct {
	Year                int             `json:"year"`
	Month               time.Month      `json:"month"`
	Income              decimal.Decimal `json:"income"` // receitas realizadas, inclui comissão confirmada
	Expense             decimal.Decimal `json:"expense"`
	Balance             decimal.Decimal `json:"balance"`
	ConfirmedCommission decimal.Decimal `json:"confirmedCommission"`
	ExpectedCommission  decimal.Decimal `json:"expectedCommission"`
	BoletosPending      decimal.Decimal `json:"boletosPending"`
	BoletosOverdue      decimal.Decimal `json:"boletosOverdue"`
	BoletosPaid         decimal.Decimal `json:"boletosPaid"`
}

func inMonth(d types.Date, year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

// Summarize soma os lançamentos e boletos do mês informado. Comissões
// esperadas ficam fora de Income. Boletos são agrupados pelo status exibido
// em today e contados pelo mês de vencimento.
func Summarize(snap *models.Snapshot, year int, month time.Month, today types.Date) Summary {
	s := Summary{
		Year:                year,
		Month:               month,
		Income:              decimal.Zero,
		Expense:             decimal.Zero,
		ConfirmedCommission: decimal.Zero,
		ExpectedCommission:  decimal.Zero,
		BoletosPending:      decimal.Zero,
		BoletosOverdue:      decimal.Zero,
		BoletosPaid:         decimal.Zero,
	}
	if snap == nil {
		s.Balance = decimal.Zero
		return s
	}

	for _, t := range snap.Transactions {
		if !inMonth(t.Data, year, month) {
			continue
		}
		switch {
		case t.CommissionKind == models.CommissionExpected:
			s.ExpectedCommission = s.ExpectedCommission.Add(t.Valor)
		case t.Tipo == models.TransactionExpense:
			s.Expense = s.Expense.Add(t.Valor)
		default:
			s.Income = s.Income.Add(t.Valor)
			if t.CommissionKind == models.CommissionConfirmed {
				s.ConfirmedCommission = s.ConfirmedCommission.Add(t.Valor)
			}
		}
	}

	for _, b := range snap.Boletos {
		if !inMonth(b.Vencimento, year, month) {
			continue
		}
		switch PresentedStatus(b, today) {
		case models.BoletoPaid:
			s.BoletosPaid = s.BoletosPaid.Add(b.Valor)
		case models.BoletoOverdue:
			s.BoletosOverdue = s.BoletosOverdue.Add(b.Valor)
		default:
			s.BoletosPending = s.BoletosPending.Add(b.Valor)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}
