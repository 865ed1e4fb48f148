package repositories

import (
	"context"

	"gorm.io/gorm"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// EventRepository define as operações sobre os compromissos da agenda.
type EventRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.DBEvent, error)
	Create(ctx context.Context, row *models.DBEvent) error
	Update(ctx context.Context, row *models.DBEvent) error
	Delete(ctx context.Context, userID, id string) error
}

type gormEventRepository struct {
	crud userCRUD[models.DBEvent]
}

// NewGormEventRepository cria uma nova instância de gormEventRepository.
func NewGormEventRepository(db *gorm.DB) EventRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormEventRepository")
	}
	return &gormEventRepository{crud: userCRUD[models.DBEvent]{db: db, label: "evento"}}
}

func (r *gormEventRepository) GetByID(ctx context.Context, userID, id string) (*models.DBEvent, error) {
	return r.crud.get(ctx, userID, id)
}

func (r *gormEventRepository) Create(ctx context.Context, row *models.DBEvent) error {
	return r.crud.create(ctx, row)
}

func (r *gormEventRepository) Update(ctx context.Context, row *models.DBEvent) error {
	return r.crud.update(ctx, row.UserID, row.ID, row)
}

func (r *gormEventRepository) Delete(ctx context.Context, userID, id string) error {
	return r.crud.delete(ctx, userID, id)
}
