package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"R$ 99,90", "99.9"},
		{" 10 ", "10"},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		if err != nil {
			t.Fatalf("ParseMoney(%q): %v", c.in, err)
		}
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("ParseMoney(%q) = %s, esperado %s", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"", "abc", "1,2,3"} {
		if _, err := ParseMoney(bad); err == nil {
			t.Errorf("ParseMoney(%q): esperado erro", bad)
		}
	}
}

func TestBoletoRowRoundTrip(t *testing.T) {
	pago := types.MustParseDate("2024-03-15")
	row := DBBoleto{
		ID:                 "b1",
		UserID:             "u1",
		ClientID:           "c1",
		ClientName:         "Maria",
		Placas:             "abc-1234, ABC1234,xyz9z99",
		CommissionDay:      intPtr(5),
		Valor:              "1000.00",
		Vencimento:         types.MustParseDate("2024-03-10"),
		DataPagamento:      &pago,
		Status:             "paid",
		IsRecurring:        true,
		RecurrenceType:     strPtr("indefinite"),
		RecurrenceGroupID:  strPtr("g1"),
		ComissaoRecorrente: strPtr("10.00"),
		ComissaoTipo:       strPtr("percentual"),
	}
	b, err := ToBoleto(row)
	if err != nil {
		t.Fatalf("ToBoleto: %v", err)
	}
	if len(b.Placas) != 2 || b.Placas[0] != "ABC1234" || b.Placas[1] != "XYZ9Z99" {
		t.Fatalf("placas = %v", b.Placas)
	}
	if b.Status != BoletoPaid || b.RecurrenceType != RecurrenceIndefinite || b.ComissaoTipo != CommissionPercent {
		t.Fatalf("enums mapeados incorretamente: %+v", b)
	}
	if !b.HasCommission() || !b.ComissaoRecorrente.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("comissão = %v", b.ComissaoRecorrente)
	}

	back := FromBoleto("u1", b)
	if back.Placas != "ABC1234,XYZ9Z99" || back.Valor != "1000.00" || back.Status != "paid" {
		t.Fatalf("FromBoleto = %+v", back)
	}
	if back.DataPagamento == nil || back.DataPagamento.String() != "2024-03-15" {
		t.Fatalf("data de pagamento perdida: %v", back.DataPagamento)
	}
}

func TestFromBoletoNeverStoresOverdue(t *testing.T) {
	row := FromBoleto("u1", Boleto{Valor: decimal.NewFromInt(1), Status: BoletoOverdue})
	if row.Status != string(BoletoPending) {
		t.Fatalf("status gravado = %s", row.Status)
	}
}

func TestToBoletoInvalidMoney(t *testing.T) {
	if _, err := ToBoleto(DBBoleto{ID: "x", Valor: "não é número"}); err == nil {
		t.Fatalf("esperado erro de mapeamento")
	}
}

func TestToSnapshotAttachesChildren(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := SnapshotRows{
		Clients:  []DBClient{{ID: "c1", Nome: "Maria"}, {ID: "c2", Nome: "João"}},
		Vehicles: []DBVehicle{{ID: "v1", ClientID: "c1", Placa: "ABC1234", FipeValue: strPtr("45000.00")}},
		Claims:   []DBClaim{{ID: "s1", ClientID: "c1", Tipo: "colisao", Status: "em_analise"}},
		ClaimHistory: []DBClaimStatusChange{
			{ID: "h2", ClaimID: "s1", ToStatus: "em_analise", ChangedAt: now.Add(time.Hour)},
			{ID: "h1", ClaimID: "s1", ToStatus: "aberto", ChangedAt: now},
		},
		Boletos: []DBBoleto{{ID: "b1", ClientID: "c1", Placas: "ABC1234", Valor: "10.00", Status: "pending"}},
	}
	snap, err := ToSnapshot("u1", rows, now)
	if err != nil {
		t.Fatalf("ToSnapshot: %v", err)
	}
	if len(snap.Clients[0].Vehicles) != 1 || len(snap.Clients[1].Vehicles) != 0 {
		t.Fatalf("veículos anexados incorretamente: %+v", snap.Clients)
	}
	if snap.Clients[1].Vehicles == nil {
		t.Fatalf("lista de veículos deve ser vazia, não nil")
	}
	h := snap.Claims[0].History
	if len(h) != 2 || h[0].ID != "h1" || h[1].ID != "h2" {
		t.Fatalf("histórico fora de ordem: %+v", h)
	}
	if _, ok := snap.FindBoleto("b1"); !ok {
		t.Fatalf("boleto b1 não encontrado")
	}
}

func TestToSnapshotFailsOnBadRow(t *testing.T) {
	rows := SnapshotRows{Transactions: []DBTransaction{{ID: "t1", Valor: "x"}}}
	if _, err := ToSnapshot("u1", rows, time.Now()); err == nil {
		t.Fatalf("esperado erro para linha inválida")
	}
}

func TestCommissionTransaction(t *testing.T) {
	b := Boleto{ID: "b9", ClientID: "c1"}
	tx := NewCommissionTransaction(CommissionExpected, b, decimal.NewFromInt(100), types.MustParseDate("2024-04-05"))
	if tx.Descricao != "Comissão Esperada Boleto #b9" || tx.Categoria != CategoryExpectedCommission {
		t.Fatalf("lançamento esperado = %+v", tx)
	}
	if !tx.IsCommission() || tx.Tipo != TransactionIncome {
		t.Fatalf("lançamento deveria ser comissão de receita")
	}
	row := FromTransaction("u1", tx)
	if row.SourceBoletoID == nil || *row.SourceBoletoID != "b9" || row.CommissionKind == nil || *row.CommissionKind != "expected" {
		t.Fatalf("identidade da comissão perdida: %+v", row)
	}
	if got := CommissionDescription(CommissionConfirmed, "b9"); got != "Comissão Boleto #b9" {
		t.Fatalf("descrição confirmada = %s", got)
	}
}

func TestRepresentationValidCommissionDay(t *testing.T) {
	if (Representation{CommissionDay: intPtr(0)}).ValidCommissionDay() != nil {
		t.Fatalf("dia 0 deveria ser ignorado")
	}
	if d := (Representation{CommissionDay: intPtr(31)}).ValidCommissionDay(); d == nil || *d != 31 {
		t.Fatalf("dia 31 deveria ser aceito")
	}
}

func TestJSONMetadataScan(t *testing.T) {
	var m JSONMetadata
	if err := m.Scan(`{"boleto":"b1"}`); err != nil || m["boleto"] != "b1" {
		t.Fatalf("scan string: %v %v", err, m)
	}
	if err := m.Scan(42); err == nil {
		t.Fatalf("esperado erro para tipo inválido")
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	pago := types.NewDate(2024, time.March, 5)
	comissao := decimal.RequireFromString("10")
	orig := &Snapshot{
		UserID: "u1",
		Clients: []Client{{ID: "c1", Vehicles: []Vehicle{{ID: "v1", Placa: "ABC1D23", Ano: intPtr(2020)}}}},
		Boletos: []Boleto{{
			ID:                 "b1",
			Placas:             []string{"ABC1D23"},
			DataPagamento:      &pago,
			ComissaoRecorrente: &comissao,
		}},
		Transactions: []Transaction{{ID: "t1", Descricao: "original"}},
		Claims:       []Claim{{ID: "s1", History: []ClaimStatusChange{{ToStatus: ClaimOpen}}}},
	}

	cp := orig.Clone()
	cp.Boletos[0].Placas[0] = "XYZ9A99"
	*cp.Boletos[0].DataPagamento = types.NewDate(2030, time.January, 1)
	*cp.Boletos[0].ComissaoRecorrente = decimal.RequireFromString("99")
	*cp.Clients[0].Vehicles[0].Ano = 1999
	cp.Clients[0].Vehicles[0].Placa = "XYZ9A99"
	cp.Transactions[0].Descricao = "alterada"
	cp.Claims[0].History[0].ToStatus = ClaimFinalized

	b := orig.Boletos[0]
	if b.Placas[0] != "ABC1D23" || !b.DataPagamento.Equal(pago) || !b.ComissaoRecorrente.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("boleto original alterado pela cópia: %+v", b)
	}
	v := orig.Clients[0].Vehicles[0]
	if *v.Ano != 2020 || v.Placa != "ABC1D23" {
		t.Fatalf("veículo original alterado pela cópia: %+v", v)
	}
	if orig.Transactions[0].Descricao != "original" || orig.Claims[0].History[0].ToStatus != ClaimOpen {
		t.Fatal("slices do original compartilhados com a cópia")
	}
	if (*Snapshot)(nil).Clone() != nil {
		t.Fatal("Clone de nil deve ser nil")
	}
}
