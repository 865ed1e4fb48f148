package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/billing"
	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// TransactionInput são os dados de um lançamento manual.
type TransactionInput struct {
	Tipo      models.TransactionType `json:"tipo" validate:"required,oneof=income expense"`
	Descricao string                 `json:"descricao" validate:"required,max=255"`
	Valor     decimal.Decimal        `json:"valor"`
	Data      types.Date             `json:"data"`
	Categoria string                 `json:"categoria" validate:"required,max=100"`
	ClientID  string                 `json:"clientId"`
}

func (in TransactionInput) validate() error {
	errs := fieldErrors{}
	if !in.Valor.IsPositive() {
		errs.add("valor", "deve ser maior que zero")
	}
	if in.Data.IsZero() {
		errs.add("data", "obrigatório")
	}
	// As categorias de comissão são reservadas aos lançamentos do motor.
	switch strings.TrimSpace(in.Categoria) {
	case models.CategoryCommission, models.CategoryExpectedCommission:
		errs.add("categoria", "categoria reservada para comissões de boletos")
	}
	return errs.merge(validateStruct(in))
}

func (in TransactionInput) toTransaction(id string) models.Transaction {
	return models.Transaction{
		ID:        id,
		Tipo:      in.Tipo,
		Descricao: strings.TrimSpace(in.Descricao),
		Valor:     in.Valor.Round(2),
		Data:      in.Data,
		Categoria: strings.TrimSpace(in.Categoria),
		ClientID:  strings.TrimSpace(in.ClientID),
	}
}

// TransactionService cuida dos lançamentos financeiros manuais e do resumo mensal.
// Lançamentos de comissão pertencem ao BoletoService e não podem ser editados aqui.
type TransactionService interface {
	Create(ctx context.Context, userID string, in TransactionInput) (*models.Snapshot, error)
	Update(ctx context.Context, userID, id string, in TransactionInput) (*models.Snapshot, error)
	Delete(ctx context.Context, userID, id string) (*models.Snapshot, error)
	List(ctx context.Context, userID string) ([]models.Transaction, error)
	Summary(ctx context.Context, userID string, year int, month time.Month) (billing.Summary, error)
}

type transactionServiceImpl struct {
	repo  repositories.TransactionRepository
	store SnapshotStore
	audit AuditLogService
	clock Clock
}

// NewTransactionService cria uma nova instância de TransactionService.
func NewTransactionService(repo repositories.TransactionRepository, store SnapshotStore, audit AuditLogService, clock Clock) TransactionService {
	if repo == nil || store == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewTransactionService")
	}
	return &transactionServiceImpl{repo: repo, store: store, audit: audit, clock: clock}
}

func (s *transactionServiceImpl) Create(ctx context.Context, userID string, in TransactionInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	row := models.FromTransaction(userID, in.toTransaction(""))
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao criar lançamento")
	}
	s.logChange(ctx, userID, row.ID, "criado")
	return s.store.Refetch(ctx, userID)
}

func (s *transactionServiceImpl) Update(ctx context.Context, userID, id string, in TransactionInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.manualRow(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updated := in.toTransaction(id)
	updated.CreatedAt = existing.CreatedAt
	row := models.FromTransaction(userID, updated)
	if err := s.repo.Update(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao atualizar lançamento %s", id)
	}
	s.logChange(ctx, userID, id, "atualizado")
	return s.store.Refetch(ctx, userID)
}

func (s *transactionServiceImpl) Delete(ctx context.Context, userID, id string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.manualRow(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir lançamento %s", id)
	}
	s.logChange(ctx, userID, id, "excluído")
	return s.store.Refetch(ctx, userID)
}

// manualRow busca o lançamento e recusa os de comissão.
func (s *transactionServiceImpl) manualRow(ctx context.Context, userID, id string) (*models.DBTransaction, error) {
	row, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if row.CommissionKind != nil || row.SourceBoletoID != nil {
		return nil, appErrors.NewValidationError(
			"Lançamentos de comissão são mantidos pelos boletos.",
			map[string]string{"id": fmt.Sprintf("lançamento %s é de comissão; altere o boleto de origem", id)},
		)
	}
	return row, nil
}

func (s *transactionServiceImpl) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	snap, err := s.store.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.Transactions, nil
}

func (s *transactionServiceImpl) Summary(ctx context.Context, userID string, year int, month time.Month) (billing.Summary, error) {
	if month < time.January || month > time.December {
		return billing.Summary{}, appErrors.NewValidationError("Mês inválido.", map[string]string{"month": "use 1 a 12"})
	}
	snap, err := s.store.GetSnapshot(ctx, userID)
	if err != nil {
		return billing.Summary{}, err
	}
	return billing.Summarize(snap, year, month, s.clock.Today()), nil
}

func (s *transactionServiceImpl) logChange(ctx context.Context, userID, id, what string) {
	logBestEffort(ctx, s.audit, userID, models.AuditLogEntry{
		Action:      models.AuditTransactionChange,
		Description: fmt.Sprintf("Lançamento %s %s.", id, what),
		EntityID:    entityRef(id),
	})
}
