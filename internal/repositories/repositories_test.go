package repositories

import (
	"context"
	"errors"
	"testing"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/datatest"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

const user = "user-1"

func strp(s string) *string { return &s }

func boletoRow(venc string, group string) models.DBBoleto {
	row := models.DBBoleto{
		UserID:     user,
		ClientID:   "c1",
		ClientName: "Maria",
		Placas:     "ABC1234",
		Valor:      "100.00",
		Vencimento: types.MustParseDate(venc),
		Status:     string(models.BoletoPending),
	}
	if group != "" {
		row.IsRecurring = true
		row.RecurrenceType = strp(string(models.RecurrenceIndefinite))
		row.RecurrenceGroupID = strp(group)
	}
	return row
}

func TestBoletoCreateBatchAndGroupQueries(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))

	rows := []models.DBBoleto{
		boletoRow("2024-03-10", "g1"),
		boletoRow("2024-01-10", "g1"),
		boletoRow("2024-02-10", "g1"),
		boletoRow("2024-02-10", ""),
	}
	if err := repos.Boletos.CreateBatch(ctx, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	for _, r := range rows {
		if r.ID == "" {
			t.Fatalf("ID não foi gerado")
		}
	}

	group, err := repos.Boletos.ListGroup(ctx, user, "g1")
	if err != nil {
		t.Fatalf("ListGroup: %v", err)
	}
	if len(group) != 3 || group[0].Vencimento.String() != "2024-01-10" || group[2].Vencimento.String() != "2024-03-10" {
		t.Fatalf("grupo fora de ordem: %+v", group)
	}

	n, err := repos.Boletos.UpdateGroupFieldsFrom(ctx, user, "g1", types.MustParseDate("2024-02-10"), map[string]interface{}{"valor": "150.00"})
	if err != nil || n != 2 {
		t.Fatalf("UpdateGroupFieldsFrom = %d, %v", n, err)
	}
	first, _ := repos.Boletos.GetByID(ctx, user, group[0].ID)
	if first.Valor != "100.00" {
		t.Fatalf("membro anterior não deveria mudar: %s", first.Valor)
	}

	if _, err := repos.Boletos.GetByID(ctx, "outro-usuario", group[0].ID); !errors.Is(err, appErrors.ErrNotFound) {
		t.Fatalf("boleto de outro usuário deveria ser ErrNotFound, veio %v", err)
	}
}

func TestBoletoLockGroupInsideTransaction(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))
	rows := []models.DBBoleto{boletoRow("2024-01-10", "g1"), boletoRow("2024-02-10", "g1"), boletoRow("2024-02-10", "g2")}
	if err := repos.Boletos.CreateBatch(ctx, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	err := repos.Transaction(ctx, func(tx *Repositories) error {
		n, err := tx.Boletos.LockGroup(ctx, user, "g1")
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("LockGroup travou %d linhas, esperava 2", n)
		}
		group, err := tx.Boletos.ListGroup(ctx, user, "g1")
		if err != nil {
			return err
		}
		if len(group) != 2 {
			t.Errorf("ListGroup após a trava = %d linhas", len(group))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	if n, err := repos.Boletos.LockGroup(ctx, "outro-usuario", "g1"); err != nil || n != 0 {
		t.Fatalf("LockGroup de outro usuário = %d, %v", n, err)
	}
}

func TestBoletoRejectsOverdueOnWrite(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))

	row := boletoRow("2024-03-10", "")
	row.Status = string(models.BoletoOverdue)
	if err := repos.Boletos.CreateBatch(ctx, []models.DBBoleto{row}); !errors.Is(err, appErrors.ErrValidation) {
		t.Fatalf("esperado ErrValidation, veio %v", err)
	}

	row.Status = string(models.BoletoPending)
	if err := repos.Boletos.CreateBatch(ctx, []models.DBBoleto{row}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := repos.Boletos.UpdateFields(ctx, user, "inexistente", map[string]interface{}{"status": "overdue"}); !errors.Is(err, appErrors.ErrValidation) {
		t.Fatalf("esperado ErrValidation no update, veio %v", err)
	}
}

func TestBoletoSetStatus(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))
	rows := []models.DBBoleto{boletoRow("2024-03-10", "")}
	if err := repos.Boletos.CreateBatch(ctx, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	pago := types.MustParseDate("2024-03-15")
	if err := repos.Boletos.SetStatus(ctx, user, rows[0].ID, models.BoletoPaid, &pago); err != nil {
		t.Fatalf("SetStatus paid: %v", err)
	}
	got, _ := repos.Boletos.GetByID(ctx, user, rows[0].ID)
	if got.Status != "paid" || got.DataPagamento == nil || got.DataPagamento.String() != "2024-03-15" {
		t.Fatalf("status gravado = %s %v", got.Status, got.DataPagamento)
	}
	if err := repos.Boletos.SetStatus(ctx, user, rows[0].ID, models.BoletoPending, nil); err != nil {
		t.Fatalf("SetStatus pending: %v", err)
	}
	got, _ = repos.Boletos.GetByID(ctx, user, rows[0].ID)
	if got.Status != "pending" || got.DataPagamento != nil {
		t.Fatalf("reversão não limpou pagamento: %s %v", got.Status, got.DataPagamento)
	}
	if err := repos.Boletos.SetStatus(ctx, user, "nao-existe", models.BoletoPaid, &pago); !errors.Is(err, appErrors.ErrNotFound) {
		t.Fatalf("esperado ErrNotFound, veio %v", err)
	}
}

func commissionRow(boletoID string, kind models.CommissionKind, valor string) *models.DBTransaction {
	return &models.DBTransaction{
		UserID:         user,
		Tipo:           string(models.TransactionIncome),
		Descricao:      models.CommissionDescription(kind, boletoID),
		Valor:          valor,
		Data:           types.MustParseDate("2024-04-05"),
		Categoria:      kind.Category(),
		SourceBoletoID: strp(boletoID),
		CommissionKind: strp(string(kind)),
	}
}

func TestCommissionUpsertKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))

	first := commissionRow("b1", models.CommissionExpected, "100.00")
	if err := repos.Transactions.UpsertCommission(ctx, first); err != nil {
		t.Fatalf("UpsertCommission: %v", err)
	}
	second := commissionRow("b1", models.CommissionExpected, "120.00")
	if err := repos.Transactions.UpsertCommission(ctx, second); err != nil {
		t.Fatalf("UpsertCommission (update): %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert criou nova linha: %s != %s", second.ID, first.ID)
	}
	got, err := repos.Transactions.FindCommission(ctx, user, "b1", models.CommissionExpected)
	if err != nil || got.Valor != "120.00" {
		t.Fatalf("FindCommission = %+v, %v", got, err)
	}

	// A confirmada convive com a esperada; a identidade inclui o tipo.
	if err := repos.Transactions.UpsertCommission(ctx, commissionRow("b1", models.CommissionConfirmed, "120.00")); err != nil {
		t.Fatalf("UpsertCommission confirmada: %v", err)
	}

	// O índice único impede duplicata criada por fora do upsert.
	if err := repos.Transactions.Create(ctx, commissionRow("b1", models.CommissionExpected, "1.00")); !errors.Is(err, appErrors.ErrConflict) {
		t.Fatalf("esperado ErrConflict, veio %v", err)
	}

	n, err := repos.Transactions.DeleteCommissions(ctx, user, []string{"b1"}, models.CommissionExpected)
	if err != nil || n != 1 {
		t.Fatalf("DeleteCommissions = %d, %v", n, err)
	}
	if _, err := repos.Transactions.FindCommission(ctx, user, "b1", models.CommissionExpected); !errors.Is(err, appErrors.ErrNotFound) {
		t.Fatalf("esperada deveria ter sido removida: %v", err)
	}
	if _, err := repos.Transactions.FindCommission(ctx, user, "b1", models.CommissionConfirmed); err != nil {
		t.Fatalf("confirmada não deveria ser removida: %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))
	rows := []models.DBBoleto{boletoRow("2024-03-10", "")}

	boom := errors.New("falha simulada")
	err := repos.Transaction(ctx, func(tx *Repositories) error {
		if err := tx.Boletos.CreateBatch(ctx, rows); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("esperado erro simulado, veio %v", err)
	}
	if _, err := repos.Boletos.GetByID(ctx, user, rows[0].ID); !errors.Is(err, appErrors.ErrNotFound) {
		t.Fatalf("rollback não desfez a inserção: %v", err)
	}
}

func TestClientVehiclesReplaceAndSnapshotLoad(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))

	client := &models.DBClient{UserID: user, Nome: "Maria"}
	if err := repos.Clients.Create(ctx, client, []models.DBVehicle{{Placa: "ABC1234"}, {Placa: "XYZ9Z99"}}); err != nil {
		t.Fatalf("Create cliente: %v", err)
	}
	client.Nome = "Maria Silva"
	if err := repos.Clients.Update(ctx, client, []models.DBVehicle{{Placa: "DEF5678"}}); err != nil {
		t.Fatalf("Update cliente: %v", err)
	}
	vehicles, err := repos.Clients.ListVehicles(ctx, user, client.ID)
	if err != nil || len(vehicles) != 1 || vehicles[0].Placa != "DEF5678" {
		t.Fatalf("veículos = %+v, %v", vehicles, err)
	}

	if err := repos.Representations.Create(ctx, &models.DBRepresentation{UserID: user, Nome: "Parceiro"}); err != nil {
		t.Fatalf("Create representação: %v", err)
	}
	claim := &models.DBClaim{UserID: user, ClientID: client.ID, Tipo: "colisao", Status: string(models.ClaimOpen)}
	if err := repos.Claims.Create(ctx, claim); err != nil {
		t.Fatalf("Create sinistro: %v", err)
	}
	if err := repos.Boletos.CreateBatch(ctx, []models.DBBoleto{boletoRow("2024-03-10", "")}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	// Linha de outro usuário não entra no snapshot.
	other := boletoRow("2024-03-10", "")
	other.UserID = "user-2"
	if err := repos.Boletos.CreateBatch(ctx, []models.DBBoleto{other}); err != nil {
		t.Fatalf("CreateBatch outro usuário: %v", err)
	}

	rows, err := repos.Snapshots.Load(ctx, user)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows.Clients) != 1 || len(rows.Vehicles) != 1 || len(rows.Representations) != 1 ||
		len(rows.Claims) != 1 || len(rows.Boletos) != 1 {
		t.Fatalf("snapshot incompleto: %+v", rows)
	}
	if rows.Clients[0].Nome != "Maria Silva" {
		t.Fatalf("update do cliente perdido: %s", rows.Clients[0].Nome)
	}

	if err := repos.Clients.Delete(ctx, user, client.ID); err != nil {
		t.Fatalf("Delete cliente: %v", err)
	}
	if vehicles, _ := repos.Clients.ListVehicles(ctx, user, client.ID); len(vehicles) != 0 {
		t.Fatalf("veículos órfãos: %+v", vehicles)
	}
}

func TestClaimHistoryAndAuditLog(t *testing.T) {
	ctx := context.Background()
	repos := NewGormRepositories(datatest.Open(t))

	claim := &models.DBClaim{UserID: user, ClientID: "c1", Tipo: "roubo", Status: string(models.ClaimOpen)}
	if err := repos.Claims.Create(ctx, claim); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repos.Claims.SetStatus(ctx, user, claim.ID, models.ClaimReview); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := repos.Claims.AddHistory(ctx, &models.DBClaimStatusChange{UserID: user, ClaimID: claim.ID, FromStatus: strp("aberto"), ToStatus: "em_analise"}); err != nil {
		t.Fatalf("AddHistory: %v", err)
	}
	history, err := repos.Claims.ListHistory(ctx, user, claim.ID)
	if err != nil || len(history) != 1 {
		t.Fatalf("histórico = %+v, %v", history, err)
	}

	for _, action := range []string{models.AuditClaimStatus, models.AuditBoletoPaid} {
		if _, err := repos.AuditLogs.Create(ctx, models.AuditLogEntry{Action: action, Description: "x", Severity: "info", UserID: user}); err != nil {
			t.Fatalf("Create audit: %v", err)
		}
	}
	logs, total, err := repos.AuditLogs.GetFiltered(ctx, user, AuditLogFilter{Action: models.AuditBoletoPaid})
	if err != nil || total != 1 || len(logs) != 1 || logs[0].Severity != "INFO" {
		t.Fatalf("GetFiltered = %+v, %d, %v", logs, total, err)
	}

	if err := repos.Claims.Delete(ctx, user, claim.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if history, _ := repos.Claims.ListHistory(ctx, user, claim.ID); len(history) != 0 {
		t.Fatalf("histórico órfão: %+v", history)
	}
}
