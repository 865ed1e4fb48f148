package repositories

import (
	"context"

	"gorm.io/gorm"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// ClientRepository define as operações sobre clientes e seus veículos.
type ClientRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.DBClient, error)
	ListVehicles(ctx context.Context, userID, clientID string) ([]models.DBVehicle, error)
	// Create insere o cliente e os veículos; ClientID dos veículos é preenchido.
	Create(ctx context.Context, row *models.DBClient, vehicles []models.DBVehicle) error
	// Update grava o cliente e substitui a lista de veículos.
	Update(ctx context.Context, row *models.DBClient, vehicles []models.DBVehicle) error
	// Delete remove o cliente e seus veículos.
	Delete(ctx context.Context, userID, id string) error
}

type gormClientRepository struct {
	db   *gorm.DB
	crud userCRUD[models.DBClient]
}

// NewGormClientRepository cria uma nova instância de gormClientRepository.
func NewGormClientRepository(db *gorm.DB) ClientRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormClientRepository")
	}
	return &gormClientRepository{db: db, crud: userCRUD[models.DBClient]{db: db, label: "cliente"}}
}

func (r *gormClientRepository) GetByID(ctx context.Context, userID, id string) (*models.DBClient, error) {
	return r.crud.get(ctx, userID, id)
}

func (r *gormClientRepository) ListVehicles(ctx context.Context, userID, clientID string) ([]models.DBVehicle, error) {
	var rows []models.DBVehicle
	if err := scoped(r.db, ctx, userID).Where("client_id = ?", clientID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, translateError("listando veículos do cliente "+clientID, err)
	}
	return rows, nil
}

func (r *gormClientRepository) Create(ctx context.Context, row *models.DBClient, vehicles []models.DBVehicle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return translateError("inserindo cliente", err)
		}
		return insertVehicles(tx, row, vehicles)
	})
}

func (r *gormClientRepository) Update(ctx context.Context, row *models.DBClient, vehicles []models.DBVehicle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		crud := userCRUD[models.DBClient]{db: tx, label: "cliente"}
		if err := crud.update(ctx, row.UserID, row.ID, row); err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND client_id = ?", row.UserID, row.ID).Delete(&models.DBVehicle{}).Error; err != nil {
			return translateError("removendo veículos do cliente "+row.ID, err)
		}
		return insertVehicles(tx, row, vehicles)
	})
}

func (r *gormClientRepository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND client_id = ?", userID, id).Delete(&models.DBVehicle{}).Error; err != nil {
			return translateError("removendo veículos do cliente "+id, err)
		}
		crud := userCRUD[models.DBClient]{db: tx, label: "cliente"}
		return crud.delete(ctx, userID, id)
	})
}

func insertVehicles(tx *gorm.DB, client *models.DBClient, vehicles []models.DBVehicle) error {
	if len(vehicles) == 0 {
		return nil
	}
	for i := range vehicles {
		vehicles[i].UserID = client.UserID
		vehicles[i].ClientID = client.ID
	}
	if err := tx.Create(&vehicles).Error; err != nil {
		return translateError("inserindo veículos do cliente "+client.ID, err)
	}
	return nil
}
