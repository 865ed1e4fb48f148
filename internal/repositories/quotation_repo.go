package repositories

import (
	"context"

	"gorm.io/gorm"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// QuotationRepository define as operações sobre cotações.
type QuotationRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.DBQuotation, error)
	Create(ctx context.Context, row *models.DBQuotation) error
	Update(ctx context.Context, row *models.DBQuotation) error
	Delete(ctx context.Context, userID, id string) error
}

type gormQuotationRepository struct {
	crud userCRUD[models.DBQuotation]
}

// NewGormQuotationRepository cria uma nova instância de gormQuotationRepository.
func NewGormQuotationRepository(db *gorm.DB) QuotationRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormQuotationRepository")
	}
	return &gormQuotationRepository{crud: userCRUD[models.DBQuotation]{db: db, label: "cotação"}}
}

func (r *gormQuotationRepository) GetByID(ctx context.Context, userID, id string) (*models.DBQuotation, error) {
	return r.crud.get(ctx, userID, id)
}

func (r *gormQuotationRepository) Create(ctx context.Context, row *models.DBQuotation) error {
	return r.crud.create(ctx, row)
}

func (r *gormQuotationRepository) Update(ctx context.Context, row *models.DBQuotation) error {
	return r.crud.update(ctx, row.UserID, row.ID, row)
}

func (r *gormQuotationRepository) Delete(ctx context.Context, userID, id string) error {
	return r.crud.delete(ctx, userID, id)
}
