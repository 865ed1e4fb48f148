package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// TransactionRepository define as operações sobre os lançamentos financeiros.
// Lançamentos de comissão são identificados por (source_boleto_id, commission_kind).
type TransactionRepository interface {
	GetByID(ctx context.Context, userID, id string) (*models.DBTransaction, error)
	Create(ctx context.Context, row *models.DBTransaction) error
	Update(ctx context.Context, row *models.DBTransaction) error
	Delete(ctx context.Context, userID, id string) error
	DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error)

	// FindCommission devolve ErrNotFound quando o boleto não tem lançamento do tipo.
	FindCommission(ctx context.Context, userID, boletoID string, kind models.CommissionKind) (*models.DBTransaction, error)
	// UpsertCommission grava o lançamento de comissão, atualizando o existente
	// com a mesma identidade. O ID final é gravado em row.
	UpsertCommission(ctx context.Context, row *models.DBTransaction) error
	// DeleteCommissions remove os lançamentos do tipo para os boletos informados.
	DeleteCommissions(ctx context.Context, userID string, boletoIDs []string, kind models.CommissionKind) (int64, error)
}

type gormTransactionRepository struct {
	db   *gorm.DB
	crud userCRUD[models.DBTransaction]
}

// NewGormTransactionRepository cria uma nova instância de gormTransactionRepository.
func NewGormTransactionRepository(db *gorm.DB) TransactionRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormTransactionRepository")
	}
	return &gormTransactionRepository{db: db, crud: userCRUD[models.DBTransaction]{db: db, label: "transação"}}
}

func (r *gormTransactionRepository) GetByID(ctx context.Context, userID, id string) (*models.DBTransaction, error) {
	return r.crud.get(ctx, userID, id)
}

func (r *gormTransactionRepository) Create(ctx context.Context, row *models.DBTransaction) error {
	return r.crud.create(ctx, row)
}

func (r *gormTransactionRepository) Update(ctx context.Context, row *models.DBTransaction) error {
	return r.crud.update(ctx, row.UserID, row.ID, row)
}

func (r *gormTransactionRepository) Delete(ctx context.Context, userID, id string) error {
	return r.crud.delete(ctx, userID, id)
}

func (r *gormTransactionRepository) DeleteByIDs(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := scoped(r.db, ctx, userID).Where("id IN ?", ids).Delete(&models.DBTransaction{})
	if res.Error != nil {
		return 0, translateError(fmt.Sprintf("excluindo %d transações", len(ids)), res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormTransactionRepository) FindCommission(ctx context.Context, userID, boletoID string, kind models.CommissionKind) (*models.DBTransaction, error) {
	var row models.DBTransaction
	err := scoped(r.db, ctx, userID).
		Where("source_boleto_id = ? AND commission_kind = ?", boletoID, string(kind)).
		First(&row).Error
	if err != nil {
		return nil, translateError(fmt.Sprintf("buscando comissão %s do boleto %s", kind, boletoID), err)
	}
	return &row, nil
}

func (r *gormTransactionRepository) UpsertCommission(ctx context.Context, row *models.DBTransaction) error {
	if row.SourceBoletoID == nil || row.CommissionKind == nil {
		return fmt.Errorf("%w: lançamento de comissão sem boleto de origem ou tipo", appErrors.ErrInvalidInput)
	}
	existing, err := r.FindCommission(ctx, row.UserID, *row.SourceBoletoID, models.CommissionKind(*row.CommissionKind))
	switch {
	case err == nil:
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return r.Update(ctx, row)
	case errors.Is(err, appErrors.ErrNotFound):
		row.ID = ""
		return r.Create(ctx, row)
	default:
		return err
	}
}

func (r *gormTransactionRepository) DeleteCommissions(ctx context.Context, userID string, boletoIDs []string, kind models.CommissionKind) (int64, error) {
	if len(boletoIDs) == 0 {
		return 0, nil
	}
	res := scoped(r.db, ctx, userID).
		Where("source_boleto_id IN ? AND commission_kind = ?", boletoIDs, string(kind)).
		Delete(&models.DBTransaction{})
	if res.Error != nil {
		return 0, translateError(fmt.Sprintf("excluindo comissões %s de %d boletos", kind, len(boletoIDs)), res.Error)
	}
	return res.RowsAffected, nil
}
