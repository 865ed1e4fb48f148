package billing

import (
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// PresentedStatus devolve o status exibido: overdue quando o boleto está
// pending e o vencimento é anterior a hoje; caso contrário o status gravado.
func PresentedStatus(b models.Boleto, today types.Date) models.BoletoStatus {
	if b.Status == models.BoletoPaid {
		return models.BoletoPaid
	}
	if b.Vencimento.Before(today) {
		return models.BoletoOverdue
	}
	return models.BoletoPending
}

// ApplyPresentation devolve uma cópia da lista com o status exibido calculado.
// A lista original não é alterada.
func ApplyPresentation(boletos []models.Boleto, today types.Date) []models.Boleto {
	out := make([]models.Boleto, len(boletos))
	for i, b := range boletos {
		b.Status = PresentedStatus(b, today)
		out[i] = b
	}
	return out
}

// StoredStatus converte um status exibido de volta ao gravável.
func StoredStatus(s models.BoletoStatus) models.BoletoStatus {
	if s == models.BoletoPaid {
		return models.BoletoPaid
	}
	return models.BoletoPending
}
