package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// BoletoRepository define as operações sobre a tabela de boletos.
// Todas as operações são restritas ao usuário informado.
type BoletoRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.DBBoleto, error)
	// ListGroup devolve os membros do grupo ordenados por vencimento.
	ListGroup(ctx context.Context, userID, groupID string) ([]models.DBBoleto, error)
	// LockGroup trava as linhas do grupo (FOR UPDATE) até o fim da transação.
	// Deve ser seguido de um ListGroup em instrução separada. No SQLite é no-op.
	LockGroup(ctx context.Context, userID, groupID string) (int, error)
	// CreateBatch insere as linhas em uma única instrução; os IDs gerados são gravados de volta.
	CreateBatch(ctx context.Context, rows []models.DBBoleto) error
	Update(ctx context.Context, row *models.DBBoleto) error
	// UpdateFields altera apenas as colunas informadas.
	UpdateFields(ctx context.Context, userID, id string, fields map[string]interface{}) error
	SetStatus(ctx context.Context, userID, id string, status models.BoletoStatus, dataPagamento *types.Date) error
	// UpdateGroupFieldsFrom altera as colunas dos membros do grupo com vencimento >= from.
	UpdateGroupFieldsFrom(ctx context.Context, userID, groupID string, from types.Date, fields map[string]interface{}) (int64, error)
	DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error)
}

type gormBoletoRepository struct {
	db   *gorm.DB
	crud userCRUD[models.DBBoleto]
}

// NewGormBoletoRepository cria uma nova instância de gormBoletoRepository.
func NewGormBoletoRepository(db *gorm.DB) BoletoRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormBoletoRepository")
	}
	return &gormBoletoRepository{db: db, crud: userCRUD[models.DBBoleto]{db: db, label: "boleto"}}
}

func checkStoredStatus(status string) error {
	if !models.BoletoStatus(status).IsStored() {
		return appErrors.NewValidationError("status de boleto não gravável", map[string]string{
			"status": fmt.Sprintf("'%s' não pode ser gravado; use pending ou paid", status),
		})
	}
	return nil
}

func (r *gormBoletoRepository) GetByID(ctx context.Context, userID, id string) (*models.DBBoleto, error) {
	return r.crud.get(ctx, userID, id)
}

func (r *gormBoletoRepository) ListGroup(ctx context.Context, userID, groupID string) ([]models.DBBoleto, error) {
	var rows []models.DBBoleto
	err := scoped(r.db, ctx, userID).
		Where("recurrence_group_id = ?", groupID).
		Order("vencimento ASC").Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError("listando grupo de boletos "+groupID, err)
	}
	return rows, nil
}

func (r *gormBoletoRepository) LockGroup(ctx context.Context, userID, groupID string) (int, error) {
	var ids []string
	err := scoped(r.db, ctx, userID).
		Model(&models.DBBoleto{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("recurrence_group_id = ?", groupID).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, translateError("travando grupo de boletos "+groupID, err)
	}
	return len(ids), nil
}

func (r *gormBoletoRepository) CreateBatch(ctx context.Context, rows []models.DBBoleto) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if err := checkStoredStatus(row.Status); err != nil {
			return err
		}
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return translateError(fmt.Sprintf("inserindo %d boletos", len(rows)), err)
	}
	appLogger.Debugf("%d boletos inseridos (usuário %s)", len(rows), rows[0].UserID)
	return nil
}

func (r *gormBoletoRepository) Update(ctx context.Context, row *models.DBBoleto) error {
	if err := checkStoredStatus(row.Status); err != nil {
		return err
	}
	return r.crud.update(ctx, row.UserID, row.ID, row)
}

func (r *gormBoletoRepository) UpdateFields(ctx context.Context, userID, id string, fields map[string]interface{}) error {
	if status, ok := fields["status"]; ok {
		if err := checkStoredStatus(fmt.Sprint(status)); err != nil {
			return err
		}
	}
	res := scoped(r.db, ctx, userID).Model(&models.DBBoleto{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translateError("atualizando boleto "+id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: boleto %s", appErrors.ErrNotFound, id)
	}
	return nil
}

func (r *gormBoletoRepository) SetStatus(ctx context.Context, userID, id string, status models.BoletoStatus, dataPagamento *types.Date) error {
	var pagamento interface{}
	if dataPagamento != nil && !dataPagamento.IsZero() {
		pagamento = *dataPagamento
	}
	return r.UpdateFields(ctx, userID, id, map[string]interface{}{
		"status":         string(status),
		"data_pagamento": pagamento,
	})
}

func (r *gormBoletoRepository) UpdateGroupFieldsFrom(ctx context.Context, userID, groupID string, from types.Date, fields map[string]interface{}) (int64, error) {
	if _, ok := fields["status"]; ok {
		return 0, fmt.Errorf("%w: status não pode ser alterado em lote", appErrors.ErrInvalidInput)
	}
	res := scoped(r.db, ctx, userID).Model(&models.DBBoleto{}).
		Where("recurrence_group_id = ? AND vencimento >= ?", groupID, from).
		Updates(fields)
	if res.Error != nil {
		return 0, translateError("atualizando grupo de boletos "+groupID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormBoletoRepository) DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := scoped(r.db, ctx, userID).Where("id IN ?", ids).Delete(&models.DBBoleto{})
	if res.Error != nil {
		return 0, translateError(fmt.Sprintf("excluindo %d boletos", len(ids)), res.Error)
	}
	return res.RowsAffected, nil
}
