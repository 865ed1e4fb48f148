package repositories

import (
	"context"

	"gorm.io/gorm"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// ClaimRepository define as operações sobre sinistros e seu histórico de status.
type ClaimRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.DBClaim, error)
	Create(ctx context.Context, row *models.DBClaim) error
	Update(ctx context.Context, row *models.DBClaim) error
	SetStatus(ctx context.Context, userID, id string, status models.ClaimStatus) error
	// Delete remove o sinistro e seu histórico.
	Delete(ctx context.Context, userID, id string) error
	AddHistory(ctx context.Context, row *models.DBClaimStatusChange) error
	ListHistory(ctx context.Context, userID, claimID string) ([]models.DBClaimStatusChange, error)
}

type gormClaimRepository struct {
	db   *gorm.DB
	crud userCRUD[models.DBClaim]
}

// NewGormClaimRepository cria uma nova instância de gormClaimRepository.
func NewGormClaimRepository(db *gorm.DB) ClaimRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormClaimRepository")
	}
	return &gormClaimRepository{db: db, crud: userCRUD[models.DBClaim]{db: db, label: "sinistro"}}
}

func (r *gormClaimRepository) GetByID(ctx context.Context, userID, id string) (*models.DBClaim, error) {
	return r.crud.get(ctx, userID, id)
}

func (r *gormClaimRepository) Create(ctx context.Context, row *models.DBClaim) error {
	return r.crud.create(ctx, row)
}

func (r *gormClaimRepository) Update(ctx context.Context, row *models.DBClaim) error {
	return r.crud.update(ctx, row.UserID, row.ID, row)
}

func (r *gormClaimRepository) SetStatus(ctx context.Context, userID, id string, status models.ClaimStatus) error {
	res := scoped(r.db, ctx, userID).Model(&models.DBClaim{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return translateError("atualizando status do sinistro "+id, res.Error)
	}
	if res.RowsAffected == 0 {
		return translateError("atualizando status do sinistro "+id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *gormClaimRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND claim_id = ?", userID, id).Delete(&models.DBClaimStatusChange{}).Error; err != nil {
			return translateError("removendo histórico do sinistro "+id, err)
		}
		crud := userCRUD[models.DBClaim]{db: tx, label: "sinistro"}
		return crud.delete(ctx, userID, id)
	})
}

func (r *gormClaimRepository) AddHistory(ctx context.Context, row *models.DBClaimStatusChange) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateError("registrando histórico do sinistro "+row.ClaimID, err)
	}
	return nil
}

func (r *gormClaimRepository) ListHistory(ctx context.Context, userID, claimID string) ([]models.DBClaimStatusChange, error) {
	var rows []models.DBClaimStatusChange
	if err := scoped(r.db, ctx, userID).Where("claim_id = ?", claimID).Order("changed_at ASC").Find(&rows).Error; err != nil {
		return nil, translateError("listando histórico do sinistro "+claimID, err)
	}
	return rows, nil
}
