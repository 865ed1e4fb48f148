package services

import (
	"context"
	"fmt"
	"strings"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// ClaimInput são os dados de um sinistro.
type ClaimInput struct {
	ClientID       string             `json:"clientId" validate:"required"`
	ClientName     string             `json:"clientName" validate:"required,max=255"`
	Placa          string             `json:"placa" validate:"omitempty,placa"`
	Tipo           string             `json:"tipo" validate:"required,max=100"`
	Status         models.ClaimStatus `json:"status" validate:"omitempty,oneof=aberto em_analise aprovado negado finalizado"`
	DataOcorrencia *types.Date        `json:"dataOcorrencia"`
	Descricao      string             `json:"descricao"`
}

func (in ClaimInput) toClaim(id string) models.Claim {
	c := models.Claim{
		ID:         id,
		ClientID:   strings.TrimSpace(in.ClientID),
		ClientName: strings.TrimSpace(in.ClientName),
		Placa:      in.Placa,
		Tipo:       strings.TrimSpace(in.Tipo),
		Status:     in.Status,
		Descricao:  strings.TrimSpace(in.Descricao),
	}
	if in.DataOcorrencia != nil && !in.DataOcorrencia.IsZero() {
		d := *in.DataOcorrencia
		c.DataOcorrencia = &d
	}
	return c
}

// ClaimService mantém os sinistros e seu histórico de status.
type ClaimService interface {
	Create(ctx context.Context, userID string, in ClaimInput) (*models.Snapshot, error)
	Update(ctx context.Context, userID, id string, in ClaimInput) (*models.Snapshot, error)
	// UpdateStatus troca o status e registra o histórico. O histórico é
	// secundário: se falhar, o status novo é mantido.
	UpdateStatus(ctx context.Context, userID, id string, status models.ClaimStatus, observacao string) (*models.Snapshot, error)
	Delete(ctx context.Context, userID, id string) (*models.Snapshot, error)
}

type claimServiceImpl struct {
	repo  repositories.ClaimRepository
	store SnapshotStore
	audit AuditLogService
	clock Clock
}

// NewClaimService cria uma nova instância de ClaimService.
func NewClaimService(repo repositories.ClaimRepository, store SnapshotStore, audit AuditLogService, clock Clock) ClaimService {
	if repo == nil || store == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewClaimService")
	}
	return &claimServiceImpl{repo: repo, store: store, audit: audit, clock: clock}
}

func (s *claimServiceImpl) Create(ctx context.Context, userID string, in ClaimInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	row := models.FromClaim(userID, in.toClaim(""))
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao registrar sinistro")
	}
	s.recordHistory(ctx, userID, row.ID, "", models.ClaimStatus(row.Status), "Sinistro registrado")
	return s.store.Refetch(ctx, userID)
}

func (s *claimServiceImpl) Update(ctx context.Context, userID, id string, in ClaimInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c := in.toClaim(id)
	if c.Status == "" {
		c.Status = models.ClaimStatus(existing.Status)
	}
	row := models.FromClaim(userID, c)
	if err := s.repo.Update(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao atualizar sinistro %s", id)
	}
	if from := models.ClaimStatus(existing.Status); from != c.Status {
		s.recordHistory(ctx, userID, id, from, c.Status, "")
	}
	return s.store.Refetch(ctx, userID)
}

func (s *claimServiceImpl) UpdateStatus(ctx context.Context, userID, id string, status models.ClaimStatus, observacao string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !models.ValidClaimStatuses[status] {
		return nil, appErrors.NewValidationError("Status de sinistro inválido.", map[string]string{"status": fmt.Sprintf("'%s' não é um status válido", status)})
	}
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, userID, id, status); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao alterar status do sinistro %s", id)
	}

	from := models.ClaimStatus(existing.Status)
	s.recordHistory(ctx, userID, id, from, status, observacao)
	logBestEffort(ctx, s.audit, userID, models.AuditLogEntry{
		Action:      models.AuditClaimStatus,
		Description: fmt.Sprintf("Sinistro %s: %s -> %s.", id, from, status),
		EntityID:    entityRef(id),
		Metadata:    models.JSONMetadata{"from": string(from), "to": string(status)},
	})
	return s.store.Refetch(ctx, userID)
}

func (s *claimServiceImpl) Delete(ctx context.Context, userID, id string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir sinistro %s", id)
	}
	return s.store.Refetch(ctx, userID)
}

// recordHistory grava a transição no histórico; falhas só são logadas.
func (s *claimServiceImpl) recordHistory(ctx context.Context, userID, claimID string, from, to models.ClaimStatus, observacao string) {
	row := models.FromClaimStatusChange(userID, models.ClaimStatusChange{
		ClaimID:    claimID,
		FromStatus: from,
		ToStatus:   to,
		Observacao: observacao,
		ChangedAt:  s.clock.Now().UTC(),
	})
	if err := s.repo.AddHistory(ctx, &row); err != nil {
		appLogger.Warnf("Falha ao registrar histórico do sinistro %s (%s -> %s): %v", claimID, from, to, err)
	}
}
