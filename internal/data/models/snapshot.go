package models

import (
	"slices"
	"sort"
	"time"
)

// SnapshotRows são as sete coleções de linhas lidas de uma vez para um usuário.
type SnapshotRows struct {
	Clients         []DBClient
	Vehicles        []DBVehicle
	Representations []DBRepresentation
	Transactions    []DBTransaction
	Quotations      []DBQuotation
	Claims          []DBClaim
	ClaimHistory    []DBClaimStatusChange
	Events          []DBEvent
	Boletos         []DBBoleto
}

// Snapshot é a visão completa, já mapeada, dos dados de um usuário.
type Snapshot struct {
	UserID          string           `json:"userId"`
	FetchedAt       time.Time        `json:"fetchedAt"`
	Clients         []Client         `json:"clients"`
	Representations []Representation `json:"representations"`
	Transactions    []Transaction    `json:"transactions"`
	Quotations      []Quotation      `json:"quotations"`
	Claims          []Claim          `json:"claims"`
	Events          []Event          `json:"events"`
	Boletos         []Boleto         `json:"boletos"`
}

// Clone devolve uma cópia independente do snapshot. Slices e ponteiros são
// duplicados, então alterar a cópia não afeta o original.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Clients = make([]Client, len(s.Clients))
	for i, c := range s.Clients {
		c.Vehicles = slices.Clone(c.Vehicles)
		for j := range c.Vehicles {
			c.Vehicles[j].Ano = clonePtr(c.Vehicles[j].Ano)
			c.Vehicles[j].FipeValue = clonePtr(c.Vehicles[j].FipeValue)
		}
		out.Clients[i] = c
	}
	out.Representations = make([]Representation, len(s.Representations))
	for i, r := range s.Representations {
		r.CommissionDay = clonePtr(r.CommissionDay)
		out.Representations[i] = r
	}
	out.Transactions = slices.Clone(s.Transactions)
	out.Quotations = make([]Quotation, len(s.Quotations))
	for i, q := range s.Quotations {
		q.Validade = clonePtr(q.Validade)
		out.Quotations[i] = q
	}
	out.Claims = make([]Claim, len(s.Claims))
	for i, c := range s.Claims {
		c.DataOcorrencia = clonePtr(c.DataOcorrencia)
		c.History = slices.Clone(c.History)
		out.Claims[i] = c
	}
	out.Events = make([]Event, len(s.Events))
	for i, e := range s.Events {
		e.Fim = clonePtr(e.Fim)
		out.Events[i] = e
	}
	out.Boletos = make([]Boleto, len(s.Boletos))
	for i, b := range s.Boletos {
		out.Boletos[i] = b.Clone()
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// FindBoleto procura um boleto pelo ID.
func (s *Snapshot) FindBoleto(id string) (Boleto, bool) {
	for _, b := range s.Boletos {
		if b.ID == id {
			return b, true
		}
	}
	return Boleto{}, false
}

// FindRepresentation procura uma representação pelo ID.
func (s *Snapshot) FindRepresentation(id string) (Representation, bool) {
	for _, r := range s.Representations {
		if r.ID == id {
			return r, true
		}
	}
	return Representation{}, false
}

// ToSnapshot mapeia as linhas para o snapshot de domínio. Veículos são anexados
// aos clientes e o histórico aos sinistros. Qualquer linha inválida falha o
// snapshot inteiro.
func ToSnapshot(userID string, rows SnapshotRows, fetchedAt time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		UserID:          userID,
		FetchedAt:       fetchedAt,
		Clients:         make([]Client, 0, len(rows.Clients)),
		Representations: make([]Representation, 0, len(rows.Representations)),
		Transactions:    make([]Transaction, 0, len(rows.Transactions)),
		Quotations:      make([]Quotation, 0, len(rows.Quotations)),
		Claims:          make([]Claim, 0, len(rows.Claims)),
		Events:          make([]Event, 0, len(rows.Events)),
		Boletos:         make([]Boleto, 0, len(rows.Boletos)),
	}

	vehiclesByClient := make(map[string][]Vehicle)
	for _, row := range rows.Vehicles {
		v, err := ToVehicle(row)
		if err != nil {
			return nil, err
		}
		vehiclesByClient[v.ClientID] = append(vehiclesByClient[v.ClientID], v)
	}
	for _, row := range rows.Clients {
		snap.Clients = append(snap.Clients, ToClient(row, vehiclesByClient[row.ID]))
	}

	for _, row := range rows.Representations {
		snap.Representations = append(snap.Representations, ToRepresentation(row))
	}

	for _, row := range rows.Transactions {
		t, err := ToTransaction(row)
		if err != nil {
			return nil, err
		}
		snap.Transactions = append(snap.Transactions, t)
	}

	for _, row := range rows.Quotations {
		q, err := ToQuotation(row)
		if err != nil {
			return nil, err
		}
		snap.Quotations = append(snap.Quotations, q)
	}

	historyByClaim := make(map[string][]ClaimStatusChange)
	for _, row := range rows.ClaimHistory {
		historyByClaim[row.ClaimID] = append(historyByClaim[row.ClaimID], ToClaimStatusChange(row))
	}
	for _, row := range rows.Claims {
		history := historyByClaim[row.ID]
		sort.SliceStable(history, func(i, j int) bool { return history[i].ChangedAt.Before(history[j].ChangedAt) })
		snap.Claims = append(snap.Claims, ToClaim(row, history))
	}

	for _, row := range rows.Events {
		snap.Events = append(snap.Events, ToEvent(row))
	}

	for _, row := range rows.Boletos {
		b, err := ToBoleto(row)
		if err != nil {
			return nil, err
		}
		snap.Boletos = append(snap.Boletos, b)
	}
	return snap, nil
}
