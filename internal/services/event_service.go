package services

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// EventInput são os dados de um compromisso da agenda.
type EventInput struct {
	Titulo    string     `json:"titulo" validate:"required,max=255"`
	Descricao string     `json:"descricao"`
	Inicio    time.Time  `json:"inicio" validate:"required"`
	Fim       *time.Time `json:"fim"`
	Tipo      string     `json:"tipo" validate:"max=50"`
	ClientID  string     `json:"clientId"`
}

func (in EventInput) validate() error {
	errs := fieldErrors{}
	if in.Fim != nil && in.Fim.Before(in.Inicio) {
		errs.add("fim", "não pode ser anterior ao início")
	}
	return errs.merge(validateStruct(in))
}

func (in EventInput) toEvent(id string) models.Event {
	return models.Event{
		ID:        id,
		Titulo:    strings.TrimSpace(in.Titulo),
		Descricao: strings.TrimSpace(in.Descricao),
		Inicio:    in.Inicio,
		Fim:       in.Fim,
		Tipo:      strings.TrimSpace(in.Tipo),
		ClientID:  strings.TrimSpace(in.ClientID),
	}
}

// EventService mantém a agenda.
type EventService interface {
	Create(ctx context.Context, userID string, in EventInput) (*models.Snapshot, error)
	Update(ctx context.Context, userID, id string, in EventInput) (*models.Snapshot, error)
	Delete(ctx context.Context, userID, id string) (*models.Snapshot, error)
}

type eventServiceImpl struct {
	repo  repositories.EventRepository
	store SnapshotStore
}

// NewEventService cria uma nova instância de EventService.
func NewEventService(repo repositories.EventRepository, store SnapshotStore) EventService {
	if repo == nil || store == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewEventService")
	}
	return &eventServiceImpl{repo: repo, store: store}
}

func (s *eventServiceImpl) Create(ctx context.Context, userID string, in EventInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	row := models.FromEvent(userID, in.toEvent(""))
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao criar compromisso")
	}
	return s.store.Refetch(ctx, userID)
}

func (s *eventServiceImpl) Update(ctx context.Context, userID, id string, in EventInput) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	row := models.FromEvent(userID, in.toEvent(id))
	if err := s.repo.Update(ctx, &row); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao atualizar compromisso %s", id)
	}
	return s.store.Refetch(ctx, userID)
}

func (s *eventServiceImpl) Delete(ctx context.Context, userID, id string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao excluir compromisso %s", id)
	}
	return s.store.Refetch(ctx, userID)
}
