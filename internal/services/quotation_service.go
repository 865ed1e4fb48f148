package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// QuotationInput são os dados de uma cotação.
type QuotationInput struct {
	ClientID   string                 `json:"clientId" validate:"required"`
	ClientName string                 `json:"clientName" validate:"required,max=255"`
	Placa      string                 `json:"placa" validate:"omitempty,placa"`
	Seguradora string                 `json:"seguradora" validate:"required,max=150"`
	Valor      decimal.Decimal        `json:"valor"`
	Status     models.QuotationStatus `json:"status" validate:"omitempty,oneof=aberta enviada aprovada recusada"`
	Validade   *types.Date            `json:"validade"`
	Observacao string                 `json:"observacao"`
}

func (in QuotationInput) validate() error {
	errs := fieldErrors{}
	if in.Valor.IsNegative() {
		errs.add("valor", "não pode ser negativo")
	}
	return errs.merge(validateStruct(in))
}

func (in QuotationInput) toQuotation(id string) models.Quotation {
	q := models.Quotation{
		ID:         id,
		ClientID:   strings.TrimSpace(in.ClientID),
		ClientName: strings.TrimSpace(in.ClientName),
		Placa:      in.Placa,
		Seguradora: in.Seguradora,
		Valor:      in.Valor.Round(2),
		Status:     in.Status,
		Observacao: strings.TrimSpace(in.Observacao),
	}
	if in.Validade != nil && !in.Validade.IsZero() {
		d := *in.Validade
		q.Validade = &d
	}
	return q
}

// QuotationService mantém as cotações de seguro.
type QuotationService interface {
	Create(ctx context.Context, userID string, in QuotationInput) (*models.Snapshot, error)
	Update(ctx context.Context, userID, id string, in QuotationInput) (*models.Snapshot, error)
	Delete(ctx context.Context, userID, id string) (*models.Snapshot, error)
}

type quotationServiceImpl struct {
	repo  repositories.QuotationRepository
	store SnapshotStore
}

// NewQuotationService cria uma nova instância de QuotationService.
func NewQuotationService(repo repositories.QuotationRepository, store SnapshotStore) QuotationService {
	if repo == nil || store == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewQuotationService")
	}
	return &quotationServiceImpl{repo: repo, store: store}
}

func (s *quotationServiceImpl) Create(ctx context.Context, userID string, in QuotationInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	row := models.FromQuotation(userID, in.toQuotation(""))
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao criar cotação")
	}
	return s.store.Refetch(ctx, userID)
}

func (s *quotationServiceImpl) Update(ctx context.Context, userID, id string, in QuotationInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	q := in.toQuotation(id)
	if q.Status == "" {
		q.Status = models.QuotationStatus(existing.Status)
	}
	row := models.FromQuotation(userID, q)
	if err := s.repo.Update(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao atualizar cotação %s", id)
	}
	return s.store.Refetch(ctx, userID)
}

func (s *quotationServiceImpl) Delete(ctx context.Context, userID, id string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir cotação %s", id)
	}
	return s.store.Refetch(ctx, userID)
}
