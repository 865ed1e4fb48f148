package repositories

import (
	"context"

	"gorm.io/gorm"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// RepresentationRepository define as operações sobre representações/parceiros.
type RepresentationRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.DBRepresentation, error)
	Create(ctx context.Context, row *models.DBRepresentation) error
	Update(ctx context.Context, row *models.DBRepresentation) error
	Delete(ctx context.Context, userID, id string) error
}

type gormRepresentationRepository struct {
	crud userCRUD[models.DBRepresentation]
}

// NewGormRepresentationRepository cria uma nova instância de gormRepresentationRepository.
func NewGormRepresentationRepository(db *gorm.DB) RepresentationRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormRepresentationRepository")
	}
	return &gormRepresentationRepository{crud: userCRUD[models.DBRepresentation]{db: db, label: "representação"}}
}

func (r *gormRepresentationRepository) GetByID(ctx context.Context, userID, id string) (*models.DBRepresentation, error) {
	return r.crud.get(ctx, userID, id)
}

func (r *gormRepresentationRepository) Create(ctx context.Context, row *models.DBRepresentation) error {
	return r.crud.create(ctx, row)
}

func (r *gormRepresentationRepository) Update(ctx context.Context, row *models.DBRepresentation) error {
	return r.crud.update(ctx, row.UserID, row.ID, row)
}

func (r *gormRepresentationRepository) Delete(ctx context.Context, userID, id string) error {
	return r.crud.delete(ctx, userID, id)
}
