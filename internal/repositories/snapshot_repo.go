package repositories

import (
	"context"

	"gorm.io/gorm"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// SnapshotRepository lê de uma vez todos os dados de um usuário.
type SnapshotRepository interface {
	// Load devolve as linhas de todas as tabelas do usuário, lidas na mesma transação.
	Load(ctx context.Context, userID string) (models.SnapshotRows, error)
}

type gormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository cria uma nova instância de gormSnapshotRepository.
func NewGormSnapshotRepository(db *gorm.DB) SnapshotRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormSnapshotRepository")
	}
	return &gormSnapshotRepository{db: db}
}

func (r *gormSnapshotRepository) Load(ctx context.Context, userID string) (models.SnapshotRows, error) {
	var rows models.SnapshotRows
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		queries := []struct {
			label string
			order string
			dest  interface{}
		}{
			{"clientes", "nome ASC", &rows.Clients},
			{"veículos", "created_at ASC", &rows.Vehicles},
			{"representações", "nome ASC", &rows.Representations},
			{"transações", "data DESC, created_at DESC", &rows.Transactions},
			{"cotações", "created_at DESC", &rows.Quotations},
			{"sinistros", "created_at DESC", &rows.Claims},
			{"histórico de sinistros", "changed_at ASC", &rows.ClaimHistory},
			{"eventos", "inicio ASC", &rows.Events},
			{"boletos", "vencimento ASC, created_at ASC", &rows.Boletos},
		}
		for _, q := range queries {
			if err := tx.Where("user_id = ?", userID).Order(q.order).Find(q.dest).Error; err != nil {
				return translateError("carregando "+q.label, err)
			}
		}
		return nil
	})
	if err != nil {
		return models.SnapshotRows{}, err
	}
	return rows, nil
}
