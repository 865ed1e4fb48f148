package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/billing"
	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// BoletoInput são os dados de criação e edição de um boleto.
type BoletoInput struct {
	ClientID           string                `json:"clientId" validate:"required"`
	ClientName         string                `json:"clientName" validate:"max=255"`
	Placas             []string              `json:"placas" validate:"required,min=1,dive,placa"`
	RepresentacaoID    string                `json:"representacaoId"`
	Representacao      string                `json:"representacao" validate:"max=255"`
	CommissionDay      *int                  `json:"commissionDay" validate:"omitempty,min=1,max=31"`
	Valor              decimal.Decimal       `json:"valor"`
	Vencimento         types.Date            `json:"vencimento"`
	DataPagamento      *types.Date           `json:"dataPagamento"`
	Status             models.BoletoStatus   `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	IsRecurring        bool                  `json:"isRecurring"`
	RecurrenceType     models.RecurrenceType `json:"recurrenceType" validate:"omitempty,oneof=indefinite limited"`
	RecurrenceMonths   *int                  `json:"recurrenceMonths" validate:"omitempty,min=1,max=120"`
	ComissaoRecorrente *decimal.Decimal      `json:"comissaoRecorrente"`
	ComissaoTipo       models.CommissionType `json:"comissaoTipo" validate:"omitempty,oneof=percentual valor"`
	Observacao         string                `json:"observacao"`
}

func (in BoletoInput) validate() error {
	errs := fieldErrors{}
	if !in.Valor.IsPositive() {
		errs.add("valor", "deve ser maior que zero")
	}
	if in.Vencimento.IsZero() {
		errs.add("vencimento", "obrigatório")
	}
	if in.IsRecurring {
		switch in.RecurrenceType {
		case models.RecurrenceIndefinite:
		case models.RecurrenceLimited:
			if in.RecurrenceMonths == nil {
				errs.add("recurrenceMonths", "obrigatório para recorrência limitada")
			}
		default:
			errs.add("recurrenceType", "obrigatório para boleto recorrente")
		}
	}
	if in.ComissaoRecorrente != nil {
		if in.ComissaoRecorrente.IsNegative() {
			errs.add("comissaoRecorrente", "não pode ser negativa")
		}
		if in.ComissaoTipo == "" {
			errs.add("comissaoTipo", "obrigatório quando há comissão")
		}
	}
	return errs.merge(validateStruct(in))
}

// apply copia os campos editáveis (sem status nem recorrência) sobre b.
func (in BoletoInput) apply(b models.Boleto) models.Boleto {
	b.ClientID = strings.TrimSpace(in.ClientID)
	b.ClientName = strings.TrimSpace(in.ClientName)
	b.Placas = models.SplitPlacas(strings.Join(in.Placas, ","))
	b.RepresentacaoID = strings.TrimSpace(in.RepresentacaoID)
	b.Representacao = strings.TrimSpace(in.Representacao)
	b.CommissionDay = copyIntPtr(in.CommissionDay)
	b.Valor = in.Valor.Round(2)
	b.Vencimento = in.Vencimento
	b.Observacao = strings.TrimSpace(in.Observacao)
	b.ComissaoRecorrente = nil
	b.ComissaoTipo = ""
	if in.ComissaoRecorrente != nil {
		c := *in.ComissaoRecorrente
		b.ComissaoRecorrente = &c
		b.ComissaoTipo = in.ComissaoTipo
	}
	return b
}

// payment resolve o status gravado e a data de pagamento pedidos. Data de
// pagamento implica paid; paid sem data usa a data atual do boleto ou hoje.
// Em edições, status vazio mantém o estado de cur.
func (in BoletoInput) payment(today types.Date, cur *models.Boleto) (models.BoletoStatus, *types.Date) {
	if in.DataPagamento != nil && !in.DataPagamento.IsZero() {
		d := *in.DataPagamento
		return models.BoletoPaid, &d
	}
	switch {
	case in.Status == models.BoletoPaid:
		if cur != nil && cur.DataPagamento != nil {
			d := *cur.DataPagamento
			return models.BoletoPaid, &d
		}
		return models.BoletoPaid, &today
	case in.Status == "" && cur != nil:
		if cur.Status == models.BoletoPaid && cur.DataPagamento != nil {
			d := *cur.DataPagamento
			return models.BoletoPaid, &d
		}
		if cur.Status == models.BoletoPaid {
			return models.BoletoPaid, &today
		}
	}
	return models.BoletoPending, nil
}

// BoletoService orquestra as mutações de boletos e os lançamentos de comissão.
// Toda mutação roda em uma transação e termina com Refetch do snapshot.
type BoletoService interface {
	CreateBoleto(ctx context.Context, userID string, in BoletoInput) (*models.Snapshot, error)
	UpdateBoleto(ctx context.Context, userID, id string, in BoletoInput, scope billing.Scope) (*models.Snapshot, error)
	// MarkPaid usa hoje quando paymentDate é nil.
	MarkPaid(ctx context.Context, userID, id string, paymentDate *types.Date) (*models.Snapshot, error)
	MarkPending(ctx context.Context, userID, id string) (*models.Snapshot, error)
	// SetPaymentDate com nil volta o boleto para pending.
	SetPaymentDate(ctx context.Context, userID, id string, paymentDate *types.Date) (*models.Snapshot, error)
	DeleteBoleto(ctx context.Context, userID, id string, scope billing.Scope) (*models.Snapshot, error)
	DeleteRecurrenceGroup(ctx context.Context, userID, groupID string) (*models.Snapshot, error)

	// Derivações registradas como hooks do SnapshotStore.
	ExtendRecurringSeries(ctx context.Context, userID string, snap *models.Snapshot) (bool, error)
	ReconcileExpectedCommissions(ctx context.Context, userID string, snap *models.Snapshot) (bool, error)
}

type boletoServiceImpl struct {
	repos *repositories.Repositories
	store SnapshotStore
	audit AuditLogService
	clock Clock
}

// NewBoletoService cria uma nova instância de BoletoService.
func NewBoletoService(repos *repositories.Repositories, store SnapshotStore, audit AuditLogService, clock Clock) BoletoService {
	if repos == nil || store == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewBoletoService")
	}
	return &boletoServiceImpl{repos: repos, store: store, audit: audit, clock: clock}
}

func (s *boletoServiceImpl) CreateBoleto(ctx context.Context, userID string, in BoletoInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.resolveAssociations(ctx, userID, &in); err != nil {
		return nil, err
	}

	template := in.apply(models.Boleto{})
	template.Status, template.DataPagamento = in.payment(s.clock.Today(), nil)
	groupID := ""
	if in.IsRecurring {
		template.IsRecurring = true
		template.RecurrenceType = in.RecurrenceType
		if in.RecurrenceType == models.RecurrenceLimited {
			template.RecurrenceMonths = copyIntPtr(in.RecurrenceMonths)
		}
		groupID = models.NewID()
	}
	series := billing.PlanNewSeries(template, groupID)

	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		return createSeries(ctx, tx, userID, series)
	})
	if err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao criar boleto")
	}

	appLogger.Infof("%d boleto(s) criado(s) para o cliente %s (usuário %s)", len(series), template.ClientID, userID)
	logBestEffort(ctx, s.audit, userID, models.AuditLogEntry{
		Action:      models.AuditBoletoCreated,
		Description: fmt.Sprintf("%d boleto(s) de %s criado(s) para %s.", len(series), models.FormatMoney(template.Valor), template.ClientName),
		EntityID:    entityRef(series[0].ID),
		Metadata:    models.JSONMetadata{"count": len(series), "recurrence_group_id": groupID},
	})
	return s.store.Refetch(ctx, userID)
}

func (s *boletoServiceImpl) UpdateBoleto(ctx context.Context, userID, id string, in BoletoInput, scope billing.Scope) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if scope == "" {
		scope = billing.ScopeThis
	}
	if !scope.Valid() {
		return nil, appErrors.NewValidationError("Escopo inválido.", map[string]string{"scope": "use 'this' ou 'all'"})
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.resolveAssociations(ctx, userID, &in); err != nil {
		return nil, err
	}

	today := s.clock.Today()
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		cur, err := getBoleto(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		status, pagamento := in.payment(today, &cur)

		if scope == billing.ScopeThis || cur.RecurrenceGroupID == "" {
			updated := in.apply(cur)
			updated.Status, updated.DataPagamento = status, pagamento
			row := models.FromBoleto(userID, updated)
			if err := tx.Boletos.Update(ctx, &row); err != nil {
				return err
			}
			return syncCommissions(ctx, tx, userID, updated)
		}
		return updateSeriesFrom(ctx, tx, userID, cur, in, status, pagamento)
	})
	if err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao atualizar boleto %s", id)
	}

	logBestEffort(ctx, s.audit, userID, models.AuditLogEntry{
		Action:      models.AuditBoletoUpdated,
		Description: fmt.Sprintf("Boleto %s atualizado (escopo %s).", id, scope),
		EntityID:    entityRef(id),
		Metadata:    models.JSONMetadata{"scope": string(scope)},
	})
	return s.store.Refetch(ctx, userID)
}

// updateSeriesFrom edita a parcela cur e as futuras do grupo: primeiro os
// campos sem data, depois os vencimentos, mantendo o dia editado.
func updateSeriesFrom(ctx context.Context, tx *repositories.Repositories, userID string, cur models.Boleto, in BoletoInput, status models.BoletoStatus, pagamento *types.Date) error {
	groupID := cur.RecurrenceGroupID
	fields := nonDateFields(models.FromBoleto(userID, in.apply(cur)))
	if _, err := tx.Boletos.UpdateGroupFieldsFrom(ctx, userID, groupID, cur.Vencimento, fields); err != nil {
		return err
	}

	group, err := listGroup(ctx, tx, userID, groupID)
	if err != nil {
		return err
	}
	members := seriesFrom(group, cur)
	newDates := billing.RedateSeries(members, in.Vencimento)
	for _, m := range members {
		if err := tx.Boletos.UpdateFields(ctx, userID, m.ID, map[string]interface{}{"vencimento": newDates[m.ID]}); err != nil {
			return err
		}
	}
	if err := tx.Boletos.SetStatus(ctx, userID, cur.ID, status, pagamento); err != nil {
		return err
	}

	affected := make(map[string]bool, len(members))
	for _, m := range members {
		affected[m.ID] = true
	}
	group, err = listGroup(ctx, tx, userID, groupID)
	if err != nil {
		return err
	}
	for _, b := range group {
		if !affected[b.ID] {
			continue
		}
		if err := syncCommissions(ctx, tx, userID, b); err != nil {
			return err
		}
	}
	return nil
}

// seriesFrom devolve cur seguido dos membros do grupo com vencimento >= o de cur.
func seriesFrom(group []models.Boleto, cur models.Boleto) []models.Boleto {
	out := []models.Boleto{cur}
	for _, b := range billing.MembersFrom(group, cur.RecurrenceGroupID, cur.Vencimento) {
		if b.ID != cur.ID {
			out = append(out, b)
		}
	}
	return out
}

// nonDateFields são as colunas que todos os membros de uma série compartilham.
func nonDateFields(row models.DBBoleto) map[string]interface{} {
	return map[string]interface{}{
		"client_id":           row.ClientID,
		"client_name":         row.ClientName,
		"placas":              row.Placas,
		"representacao_id":    row.RepresentacaoID,
		"representacao":       row.Representacao,
		"commission_day":      row.CommissionDay,
		"valor":               row.Valor,
		"comissao_recorrente": row.ComissaoRecorrente,
		"comissao_tipo":       row.ComissaoTipo,
		"observacao":          row.Observacao,
	}
}

func (s *boletoServiceImpl) MarkPaid(ctx context.Context, userID, id string, paymentDate *types.Date) (*models.Snapshot, error) {
	date := s.clock.Today()
	if paymentDate != nil && !paymentDate.IsZero() {
		date = *paymentDate
	}
	return s.transition(ctx, userID, id, models.BoletoPaid, &date)
}

func (s *boletoServiceImpl) MarkPending(ctx context.Context, userID, id string) (*models.Snapshot, error) {
	return s.transition(ctx, userID, id, models.BoletoPending, nil)
}

func (s *boletoServiceImpl) SetPaymentDate(ctx context.Context, userID, id string, paymentDate *types.Date) (*models.Snapshot, error) {
	if paymentDate == nil || paymentDate.IsZero() {
		return s.MarkPending(ctx, userID, id)
	}
	return s.MarkPaid(ctx, userID, id, paymentDate)
}

// transition grava o novo status e ajusta os lançamentos de comissão na mesma transação.
func (s *boletoServiceImpl) transition(ctx context.Context, userID, id string, status models.BoletoStatus, date *types.Date) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var before models.Boleto
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		b, err := getBoleto(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		before = b
		if err := tx.Boletos.SetStatus(ctx, userID, id, status, date); err != nil {
			return err
		}
		b.Status = status
		b.DataPagamento = date
		return syncCommissions(ctx, tx, userID, b)
	})
	if err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao alterar status do boleto %s para %s", id, status)
	}

	entry := models.AuditLogEntry{
		Action:      models.AuditBoletoPaid,
		Description: fmt.Sprintf("Boleto %s marcado como pago em %s.", id, date),
		EntityID:    entityRef(id),
		Metadata:    models.JSONMetadata{"from": string(before.Status), "to": string(status)},
	}
	if status == models.BoletoPending {
		entry.Action = models.AuditBoletoReverted
		entry.Description = fmt.Sprintf("Boleto %s voltou para pendente.", id)
	}
	logBestEffort(ctx, s.audit, userID, entry)
	return s.store.Refetch(ctx, userID)
}

func (s *boletoServiceImpl) DeleteBoleto(ctx context.Context, userID, id string, scope billing.Scope) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if scope == "" {
		scope = billing.ScopeThis
	}
	if !scope.Valid() {
		return nil, appErrors.NewValidationError("Escopo inválido.", map[string]string{"scope": "use 'this' ou 'all'"})
	}

	var ids []string
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		cur, err := getBoleto(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		ids = []string{cur.ID}
		if scope == billing.ScopeAll && cur.RecurrenceGroupID != "" {
			group, err := listGroup(ctx, tx, userID, cur.RecurrenceGroupID)
			if err != nil {
				return err
			}
			ids = idsOf(seriesFrom(group, cur))
		}
		return deleteBoletos(ctx, tx, userID, ids)
	})
	if err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir boleto %s", id)
	}

	logBestEffort(ctx, s.audit, userID, models.AuditLogEntry{
		Action:      models.AuditBoletoDeleted,
		Description: fmt.Sprintf("%d boleto(s) excluído(s) a partir de %s (escopo %s).", len(ids), id, scope),
		EntityID:    entityRef(id),
		Metadata:    models.JSONMetadata{"ids": ids},
	})
	return s.store.Refetch(ctx, userID)
}

func (s *boletoServiceImpl) DeleteRecurrenceGroup(ctx context.Context, userID, groupID string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var ids []string
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		group, err := listGroup(ctx, tx, userID, groupID)
		if err != nil {
			return err
		}
		if len(group) == 0 {
			return fmt.Errorf("%w: grupo de recorrência %s", appErrors.ErrNotFound, groupID)
		}
		ids = idsOf(group)
		return deleteBoletos(ctx, tx, userID, ids)
	})
	if err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir grupo de recorrência %s", groupID)
	}

	logBestEffort(ctx, s.audit, userID, models.AuditLogEntry{
		Action:      models.AuditBoletoDeleted,
		Description: fmt.Sprintf("Grupo de recorrência %s excluído (%d boletos).", groupID, len(ids)),
		Metadata:    models.JSONMetadata{"recurrence_group_id": groupID, "count": len(ids)},
	})
	return s.store.Refetch(ctx, userID)
}

// ExtendRecurringSeries acrescenta parcelas às séries indefinidas perto do fim.
// O plano é refeito dentro da transação com as linhas atuais de cada grupo.
func (s *boletoServiceImpl) ExtendRecurringSeries(ctx context.Context, userID string, snap *models.Snapshot) (bool, error) {
	today := s.clock.Today()
	plan := billing.PlanRecurringExtensions(snap.Boletos, today)
	if len(plan) == 0 {
		return false, nil
	}
	var groups []string
	seen := make(map[string]bool)
	for _, b := range plan {
		if !seen[b.RecurrenceGroupID] {
			seen[b.RecurrenceGroupID] = true
			groups = append(groups, b.RecurrenceGroupID)
		}
	}

	created := 0
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		created = 0
		for _, groupID := range groups {
			// A releitura depois da trava enxerga parcelas gravadas por outra instância.
			if _, err := tx.Boletos.LockGroup(ctx, userID, groupID); err != nil {
				return err
			}
			members, err := listGroup(ctx, tx, userID, groupID)
			if err != nil {
				return err
			}
			extension := billing.PlanRecurringExtensions(members, today)
			if len(extension) == 0 {
				continue
			}
			rows := make([]models.DBBoleto, len(extension))
			for i, b := range extension {
				rows[i] = models.FromBoleto(userID, b)
			}
			if err := tx.Boletos.CreateBatch(ctx, rows); err != nil {
				return err
			}
			created += len(rows)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if created == 0 {
		return false, nil
	}

	appLogger.Infof("%d parcela(s) recorrente(s) gerada(s) em %d série(s) (usuário %s)", created, len(groups), userID)
	logBestEffort(ctx, s.audit, userID, models.AuditLogEntry{
		Action:      models.AuditSeriesExtended,
		Description: fmt.Sprintf("%d parcela(s) gerada(s) para %d série(s) recorrente(s).", created, len(groups)),
		Metadata:    models.JSONMetadata{"groups": groups, "count": created},
	})
	return true, nil
}

// ReconcileExpectedCommissions alinha os lançamentos de comissão esperada aos boletos.
func (s *boletoServiceImpl) ReconcileExpectedCommissions(ctx context.Context, userID string, snap *models.Snapshot) (bool, error) {
	plan := billing.PlanCommissionReconciliation(snap.Boletos, snap.Transactions)
	if plan.Empty() {
		return false, nil
	}
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		for _, t := range plan.Create {
			if err := upsertCommission(ctx, tx, userID, t); err != nil {
				return err
			}
		}
		for _, t := range plan.Update {
			if err := upsertCommission(ctx, tx, userID, t); err != nil {
				return err
			}
		}
		_, err := tx.Transactions.DeleteByIDs(ctx, userID, plan.Delete)
		return err
	})
	if err != nil {
		return false, err
	}
	appLogger.Debugf("Comissões esperadas reconciliadas (usuário %s): %d criadas, %d atualizadas, %d removidas",
		userID, len(plan.Create), len(plan.Update), len(plan.Delete))
	return true, nil
}

// resolveAssociations completa nome do cliente e dados da representação.
// O dia de comissão vem da representação quando não informado.
func (s *boletoServiceImpl) resolveAssociations(ctx context.Context, userID string, in *BoletoInput) error {
	if strings.TrimSpace(in.ClientName) == "" {
		client, err := s.repos.Clients.GetByID(ctx, userID, in.ClientID)
		if err != nil {
			if errors.Is(err, appErrors.ErrNotFound) {
				return appErrors.NewValidationError("Cliente não encontrado.", map[string]string{"clientId": "cliente não encontrado"})
			}
			return err
		}
		in.ClientName = client.Nome
	}
	if strings.TrimSpace(in.RepresentacaoID) == "" {
		return nil
	}
	row, err := s.repos.Representations.GetByID(ctx, userID, in.RepresentacaoID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return appErrors.NewValidationError("Representação não encontrada.", map[string]string{"representacaoId": "representação não encontrada"})
		}
		return err
	}
	rep := models.ToRepresentation(*row)
	if strings.TrimSpace(in.Representacao) == "" {
		in.Representacao = rep.Nome
	}
	if in.CommissionDay == nil {
		in.CommissionDay = rep.ValidCommissionDay()
	}
	return nil
}

// syncCommissions deixa os lançamentos de comissão do boleto coerentes com o status:
// pago tem só o confirmado, pendente tem só o esperado, e nenhum existe sem valor positivo.
func syncCommissions(ctx context.Context, tx *repositories.Repositories, userID string, b models.Boleto) error {
	ids := []string{b.ID}
	keep, drop := models.CommissionExpected, models.CommissionConfirmed
	want, ok := billing.ExpectedCommission(b)
	if b.Status == models.BoletoPaid {
		keep, drop = models.CommissionConfirmed, models.CommissionExpected
		want, ok = billing.ConfirmedCommission(b)
	}
	if _, err := tx.Transactions.DeleteCommissions(ctx, userID, ids, drop); err != nil {
		return err
	}
	if !ok {
		_, err := tx.Transactions.DeleteCommissions(ctx, userID, ids, keep)
		return err
	}
	return upsertCommission(ctx, tx, userID, want)
}

func upsertCommission(ctx context.Context, tx *repositories.Repositories, userID string, t models.Transaction) error {
	row := models.FromTransaction(userID, t)
	return tx.Transactions.UpsertCommission(ctx, &row)
}

// createSeries insere as parcelas e seus lançamentos de comissão; os IDs
// gerados são gravados em series.
func createSeries(ctx context.Context, tx *repositories.Repositories, userID string, series []models.Boleto) error {
	rows := make([]models.DBBoleto, len(series))
	for i, b := range series {
		rows[i] = models.FromBoleto(userID, b)
	}
	if err := tx.Boletos.CreateBatch(ctx, rows); err != nil {
		return err
	}
	for i := range series {
		series[i].ID = rows[i].ID
		series[i].CreatedAt = rows[i].CreatedAt
		if err := syncCommissions(ctx, tx, userID, series[i]); err != nil {
			return err
		}
	}
	return nil
}

// deleteBoletos remove as comissões esperadas e depois os boletos.
// Comissões confirmadas ficam como receita realizada.
func deleteBoletos(ctx context.Context, tx *repositories.Repositories, userID string, ids []string) error {
	if _, err := tx.Transactions.DeleteCommissions(ctx, userID, ids, models.CommissionExpected); err != nil {
		return err
	}
	n, err := tx.Boletos.DeleteByIDs(ctx, userID, ids)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: nenhum boleto excluído", appErrors.ErrNotFound)
	}
	return nil
}

func getBoleto(ctx context.Context, tx *repositories.Repositories, userID, id string) (models.Boleto, error) {
	row, err := tx.Boletos.GetByID(ctx, userID, id)
	if err != nil {
		return models.Boleto{}, err
	}
	b, err := models.ToBoleto(*row)
	if err != nil {
		return models.Boleto{}, appErrors.WrapErrorf(appErrors.ErrInternal, "mapeando boleto %s: %v", id, err)
	}
	return b, nil
}

func listGroup(ctx context.Context, tx *repositories.Repositories, userID, groupID string) ([]models.Boleto, error) {
	rows, err := tx.Boletos.ListGroup(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Boleto, 0, len(rows))
	for _, row := range rows {
		b, err := models.ToBoleto(row)
		if err != nil {
			return nil, appErrors.WrapErrorf(appErrors.ErrInternal, "mapeando grupo %s: %v", groupID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func idsOf(list []models.Boleto) []string {
	ids := make([]string, len(list))
	for i, b := range list {
		ids[i] = b.ID
	}
	return ids
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
