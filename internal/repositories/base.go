package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

// Repositories agrupa os repositórios ligados à mesma conexão ou transação.
type Repositories struct {
	Boletos         BoletoRepository
	Transactions    TransactionRepository
	Clients         ClientRepository
	Representations RepresentationRepository
	Quotations      QuotationRepository
	Claims          ClaimRepository
	Events          EventRepository
	AuditLogs       AuditLogRepository
	Snapshots       SnapshotRepository

	db *gorm.DB
}

// NewGormRepositories cria todos os repositórios GORM sobre db.
func NewGormRepositories(db *gorm.DB) *Repositories {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormRepositories")
	}
	return &Repositories{
		Boletos:         NewGormBoletoRepository(db),
		Transactions:    NewGormTransactionRepository(db),
		Clients:         NewGormClientRepository(db),
		Representations: NewGormRepresentationRepository(db),
		Quotations:      NewGormQuotationRepository(db),
		Claims:          NewGormClaimRepository(db),
		Events:          NewGormEventRepository(db),
		AuditLogs:       NewGormAuditLogRepository(db),
		Snapshots:       NewGormSnapshotRepository(db),
		db:              db,
	}
}

// Transaction executa fn com repositórios ligados a uma transação do banco.
// Commit se fn devolver nil, rollback caso contrário.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// translateError converte erros do GORM nos sentinelas da aplicação.
func translateError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", appErrors.ErrNotFound, operation)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", appErrors.ErrConflict, operation)
	}
	appLogger.Errorf("Erro de banco de dados durante %s: %v", operation, err)
	return appErrors.NewDatabaseErrorDetail(operation, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// scoped restringe a consulta às linhas do usuário.
func scoped(db *gorm.DB, ctx context.Context, userID string) *gorm.DB {
	return db.WithContext(ctx).Where("user_id = ?", userID)
}

// userCRUD implementa as operações comuns das tabelas por usuário.
type userCRUD[T any] struct {
	db    *gorm.DB
	label string
}

func (c userCRUD[T]) get(ctx context.Context, userID, id string) (*T, error) {
	var row T
	if err := scoped(c.db, ctx, userID).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translateError(fmt.Sprintf("buscando %s %s", c.label, id), err)
	}
	return &row, nil
}

func (c userCRUD[T]) create(ctx context.Context, row *T) error {
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		return translateError("inserindo "+c.label, err)
	}
	return nil
}

// update grava todas as colunas da linha, inclusive valores zero.
func (c userCRUD[T]) update(ctx context.Context, userID, id string, row *T) error {
	var model T
	res := scoped(c.db, ctx, userID).Model(&model).Where("id = ?", id).
		Select("*").Omit("id", "user_id", "created_at").Updates(row)
	if res.Error != nil {
		return translateError(fmt.Sprintf("atualizando %s %s", c.label, id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", appErrors.ErrNotFound, c.label, id)
	}
	return nil
}

func (c userCRUD[T]) delete(ctx context.Context, userID, id string) error {
	var model T
	res := scoped(c.db, ctx, userID).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return translateError(fmt.Sprintf("excluindo %s %s", c.label, id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", appErrors.ErrNotFound, c.label, id)
	}
	return nil
}
