package billing

import (
	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

var hundred = decimal.NewFromInt(100)

// CommissionAmount calcula a comissão do boleto, arredondada a centavos.
// percentual: valor * comissao / 100; valor: a própria comissão. Sem termos de
// comissão o resultado é zero.
func CommissionAmount(b models.Boleto) decimal.Decimal {
	if b.ComissaoRecorrente == nil {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch b.ComissaoTipo {
	case models.CommissionPercent:
		amount = b.Valor.Mul(*b.ComissaoRecorrente).Div(hundred)
	default:
		amount = *b.ComissaoRecorrente
	}
	return amount.Round(2)
}

// ExpectedCommission monta o lançamento projetado do boleto. ok é falso quando
// o boleto está pago ou a comissão não é positiva.
func ExpectedCommission(b models.Boleto) (models.Transaction, bool) {
	if b.Status == models.BoletoPaid {
		return models.Transaction{}, false
	}
	amount := CommissionAmount(b)
	if !amount.IsPositive() {
		return models.Transaction{}, false
	}
	date := ExpectedCommissionDate(b.Vencimento, b.CommissionDay)
	return models.NewCommissionTransaction(models.CommissionExpected, b, amount, date), true
}

// ConfirmedCommission monta o lançamento confirmado a partir do pagamento.
// ok é falso quando falta a data de pagamento ou a comissão não é positiva.
func ConfirmedCommission(b models.Boleto) (models.Transaction, bool) {
	if b.DataPagamento == nil || b.DataPagamento.IsZero() {
		return models.Transaction{}, false
	}
	amount := CommissionAmount(b)
	if !amount.IsPositive() {
		return models.Transaction{}, false
	}
	date := ConfirmedCommissionDate(*b.DataPagamento, b.CommissionDay)
	return models.NewCommissionTransaction(models.CommissionConfirmed, b, amount, date), true
}

// ReconciliationPlan são as escritas necessárias para alinhar os lançamentos
// projetados aos boletos.
type ReconciliationPlan struct {
	Create []models.Transaction
	Update []models.Transaction // com ID do lançamento existente
	Delete []string             // IDs de lançamentos
}

// Empty indica que nada precisa ser gravado.
func (p ReconciliationPlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// PlanCommissionReconciliation compara boletos e lançamentos projetados.
// Boletos não pagos com comissão positiva devem ter exatamente um lançamento
// projetado com o valor e a data atuais. Lançamentos projetados de boletos
// pagos, inexistentes ou sem comissão são removidos, assim como duplicatas.
// Aplicar o plano e planejar de novo resulta em plano vazio.
func PlanCommissionReconciliation(boletos []models.Boleto, transactions []models.Transaction) ReconciliationPlan {
	expectedByBoleto := make(map[string][]models.Transaction)
	for _, t := range transactions {
		if t.CommissionKind == models.CommissionExpected && t.SourceBoletoID != "" {
			expectedByBoleto[t.SourceBoletoID] = append(expectedByBoleto[t.SourceBoletoID], t)
		}
	}

	var plan ReconciliationPlan
	seen := make(map[string]bool, len(boletos))
	for _, b := range boletos {
		seen[b.ID] = true
		existing := expectedByBoleto[b.ID]
		want, ok := ExpectedCommission(b)
		if !ok {
			for _, t := range existing {
				plan.Delete = append(plan.Delete, t.ID)
			}
			continue
		}
		if len(existing) == 0 {
			plan.Create = append(plan.Create, want)
			continue
		}
		current := existing[0]
		if !current.Valor.Equal(want.Valor) || !current.Data.Equal(want.Data) {
			want.ID = current.ID
			want.CreatedAt = current.CreatedAt
			plan.Update = append(plan.Update, want)
		}
		for _, dup := range existing[1:] {
			plan.Delete = append(plan.Delete, dup.ID)
		}
	}

	for boletoID, rows := range expectedByBoleto {
		if seen[boletoID] {
			continue
		}
		for _, t := range rows {
			plan.Delete = append(plan.Delete, t.ID)
		}
	}
	return plan
}
