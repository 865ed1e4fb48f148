// Package billing reúne as regras puras de boletos e comissões: status
// apresentado, geração de séries recorrentes, cálculo e conciliação de
// comissões e o resumo financeiro. Nada aqui acessa o banco.
package billing

import (
	"time"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

// ExtensionHorizonMonths é a antecedência, em meses, com que uma série
// indefinida ganha um novo lote.
const ExtensionHorizonMonths = 3

// BatchSize é a quantidade de parcelas de um lote recorrente indefinido.
const BatchSize = 12

// CommissionDate calcula a data de pagamento da comissão a partir de uma data
// base: mês seguinte ao da base, no commissionDay (1 a 31, limitado ao fim do
// mês) ou no dia 1 quando ausente. Sábado e domingo passam para a segunda.
func CommissionDate(base types.Date, commissionDay *int) types.Date {
	d := base.FirstOfMonth().AddMonths(1)
	if commissionDay != nil && *commissionDay >= 1 && *commissionDay <= 31 {
		d = d.WithDay(*commissionDay)
	}
	return RollWeekend(d)
}

// ExpectedCommissionDate é a data da comissão projetada, a partir do vencimento.
func ExpectedCommissionDate(vencimento types.Date, commissionDay *int) types.Date {
	return CommissionDate(vencimento, commissionDay)
}

// ConfirmedCommissionDate é a data da comissão confirmada, a partir do pagamento.
func ConfirmedCommissionDate(dataPagamento types.Date, commissionDay *int) types.Date {
	return CommissionDate(dataPagamento, commissionDay)
}

// RollWeekend move sábado e domingo para a segunda-feira seguinte.
func RollWeekend(d types.Date) types.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(2)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}
