package repositories

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

// AuditLogFilter são os filtros opcionais da consulta ao log de auditoria.
type AuditLogFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Severity  string
	Action    string
	EntityID  string
	Limit     int
	Offset    int
}

// AuditLogRepository define a interface para operações no repositório de logs de auditoria.
type AuditLogRepository interface {
	// Create insere uma nova entrada de log de auditoria.
	Create(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error)

	// GetFiltered busca as entradas do usuário com paginação.
	// Retorna as entradas e a contagem total que corresponde aos filtros.
	GetFiltered(ctx context.Context, userID string, filter AuditLogFilter) (logs []models.AuditLogEntry, totalCount int64, err error)
}

// gormAuditLogRepository é a implementação GORM de AuditLogRepository.
type gormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository cria uma nova instância de gormAuditLogRepository.
func NewGormAuditLogRepository(db *gorm.DB) AuditLogRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormAuditLogRepository")
	}
	return &gormAuditLogRepository{db: db}
}

func (r *gormAuditLogRepository) Create(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	// Severidade sempre em maiúsculas.
	entry.Severity = strings.ToUpper(entry.Severity)

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		// Metadata pode ter dados sensíveis, não vai para o log.
		appLogger.Errorf("Erro ao criar entrada de log de auditoria (Ação: %s, Usuário: %s, Severidade: %s): %v",
			entry.Action, entry.UserID, entry.Severity, err)
		return nil, appErrors.WrapErrorf(err, "falha ao criar entrada de log no banco (GORM)")
	}
	return &entry, nil
}

func (r *gormAuditLogRepository) GetFiltered(ctx context.Context, userID string, filter AuditLogFilter) ([]models.AuditLogEntry, int64, error) {
	var entries []models.AuditLogEntry
	var totalCount int64

	query := r.db.WithContext(ctx).Model(&models.AuditLogEntry{}).Where("user_id = ?", userID)

	if filter.StartDate != nil {
		// Desde o começo do dia.
		s := *filter.StartDate
		query = query.Where("timestamp >= ?", time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location()))
	}
	if filter.EndDate != nil {
		// Até o final do dia.
		e := *filter.EndDate
		query = query.Where("timestamp <= ?", time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 999999999, e.Location()))
	}
	if filter.Severity != "" {
		query = query.Where("UPPER(severity) = UPPER(?)", filter.Severity)
	}
	if filter.Action != "" {
		query = query.Where("LOWER(action) = LOWER(?)", filter.Action)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}

	// Contagem antes de limit/offset.
	if err := query.Count(&totalCount).Error; err != nil {
		appLogger.Errorf("Erro ao contar logs de auditoria filtrados: %v", err)
		return nil, 0, appErrors.WrapErrorf(err, "falha ao contar logs de auditoria (GORM)")
	}
	if totalCount == 0 {
		return []models.AuditLogEntry{}, 0, nil
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	} else if limit > 1000 {
		limit = 1000
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	if err := query.Order("timestamp DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		appLogger.Errorf("Erro ao buscar logs de auditoria filtrados: %v", err)
		return nil, 0, appErrors.WrapErrorf(err, "falha ao buscar logs de auditoria (GORM)")
	}
	return entries, totalCount, nil
}
