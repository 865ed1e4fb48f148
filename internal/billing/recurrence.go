package billing

import (
	"sort"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// Scope define o alcance de uma edição ou exclusão em série recorrente.
type Scope string

const (
	ScopeThis Scope = "this" // só a parcela indicada
	ScopeAll  Scope = "all"  // a parcela indicada e as futuras
)

// Valid indica se o escopo é conhecido.
func (s Scope) Valid() bool {
	return s == ScopeThis || s == ScopeAll
}

// SeriesLength devolve quantas parcelas a criação deve gerar.
func SeriesLength(b models.Boleto) int {
	if !b.IsRecurring {
		return 1
	}
	if b.RecurrenceType == models.RecurrenceLimited {
		if b.RecurrenceMonths == nil || *b.RecurrenceMonths < 1 {
			return 1
		}
		return *b.RecurrenceMonths
	}
	return BatchSize
}

// PlanNewSeries expande o boleto informado nas parcelas a inserir. A parcela i
// vence em first.AddMonths(i). Séries recorrentes recebem o groupID informado.
func PlanNewSeries(template models.Boleto, groupID string) []models.Boleto {
	n := SeriesLength(template)
	out := make([]models.Boleto, 0, n)
	first := template.Vencimento
	for i := 0; i < n; i++ {
		b := template
		b.ID = ""
		b.Vencimento = first.AddMonths(i)
		b.Placas = append([]string(nil), template.Placas...)
		if template.IsRecurring {
			b.RecurrenceGroupID = groupID
		} else {
			b.RecurrenceGroupID = ""
		}
		if i > 0 {
			b.Status = models.BoletoPending
			b.DataPagamento = nil
		}
		out = append(out, b)
	}
	return out
}

// GroupMembers devolve os boletos de um grupo ordenados por vencimento.
func GroupMembers(boletos []models.Boleto, groupID string) []models.Boleto {
	var members []models.Boleto
	for _, b := range boletos {
		if groupID != "" && b.RecurrenceGroupID == groupID {
			members = append(members, b)
		}
	}
	sortByVencimento(members)
	return members
}

// MembersFrom devolve os membros do grupo com vencimento >= from, ordenados.
func MembersFrom(boletos []models.Boleto, groupID string, from types.Date) []models.Boleto {
	var out []models.Boleto
	for _, b := range GroupMembers(boletos, groupID) {
		if !b.Vencimento.Before(from) {
			out = append(out, b)
		}
	}
	return out
}

// RedateSeries devolve os novos vencimentos dos membros ordenados, mantendo o
// dia do mês editado: o membro k passa a vencer em newVencimento.AddMonths(k).
func RedateSeries(members []models.Boleto, newVencimento types.Date) map[string]types.Date {
	out := make(map[string]types.Date, len(members))
	for k, b := range members {
		out[b.ID] = newVencimento.AddMonths(k)
	}
	return out
}

// PlanRecurringExtensions devolve as parcelas novas das séries indefinidas cuja
// última parcela vence antes de today + ExtensionHorizonMonths. Cada série
// ganha BatchSize parcelas a partir do mês seguinte ao da última. Séries
// limitadas nunca são estendidas.
func PlanRecurringExtensions(boletos []models.Boleto, today types.Date) []models.Boleto {
	groups := make(map[string][]models.Boleto)
	var order []string
	for _, b := range boletos {
		if !b.IsRecurring || b.RecurrenceType != models.RecurrenceIndefinite || b.RecurrenceGroupID == "" {
			continue
		}
		if _, ok := groups[b.RecurrenceGroupID]; !ok {
			order = append(order, b.RecurrenceGroupID)
		}
		groups[b.RecurrenceGroupID] = append(groups[b.RecurrenceGroupID], b)
	}

	horizon := today.AddMonths(ExtensionHorizonMonths)
	var out []models.Boleto
	for _, groupID := range order {
		members := groups[groupID]
		sortByVencimento(members)
		tail := members[len(members)-1]
		if !tail.Vencimento.Before(horizon) {
			continue
		}
		for i := 1; i <= BatchSize; i++ {
			out = append(out, extensionOf(tail, tail.Vencimento.AddMonths(i)))
		}
	}
	return out
}

func extensionOf(tail models.Boleto, vencimento types.Date) models.Boleto {
	return models.Boleto{
		ClientID:           tail.ClientID,
		ClientName:         tail.ClientName,
		Placas:             append([]string(nil), tail.Placas...),
		RepresentacaoID:    tail.RepresentacaoID,
		Representacao:      tail.Representacao,
		CommissionDay:      copyInt(tail.CommissionDay),
		Valor:              tail.Valor,
		Vencimento:         vencimento,
		Status:             models.BoletoPending,
		IsRecurring:        true,
		RecurrenceType:     models.RecurrenceIndefinite,
		RecurrenceGroupID:  tail.RecurrenceGroupID,
		ComissaoRecorrente: tail.ComissaoRecorrente,
		ComissaoTipo:       tail.ComissaoTipo,
		Observacao:         tail.Observacao,
	}
}

func sortByVencimento(list []models.Boleto) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Vencimento.Before(list[j].Vencimento)
	})
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
