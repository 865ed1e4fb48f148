package services

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// AuditLogService define a interface para o serviço de log de auditoria.
type AuditLogService interface {
	// LogAction registra uma ação de auditoria do usuário.
	LogAction(ctx context.Context, userID string, entry models.AuditLogEntry) error

	// GetAuditLogs busca logs de auditoria do usuário com filtros e paginação.
	GetAuditLogs(ctx context.Context, userID string, filter repositories.AuditLogFilter) (logs []models.AuditLogEntry, totalCount int64, err error)
}

// auditLogServiceImpl é a implementação de AuditLogService.
type auditLogServiceImpl struct {
	repo  repositories.AuditLogRepository
	clock Clock
}

// NewAuditLogService cria uma nova instância de AuditLogService.
func NewAuditLogService(repo repositories.AuditLogRepository, clock Clock) AuditLogService {
	if repo == nil {
		appLogger.Fatalf("AuditLogRepository não pode ser nil para NewAuditLogService")
	}
	return &auditLogServiceImpl{repo: repo, clock: clock}
}

// LogAction registra uma ação de auditoria no banco de dados.
func (s *auditLogServiceImpl) LogAction(ctx context.Context, userID string, entry models.AuditLogEntry) error {
	// 1. Validar e normalizar entrada básica
	if err := requireUser(userID); err != nil {
		return err
	}
	if strings.TrimSpace(entry.Action) == "" {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "ação do log de auditoria não pode ser vazia")
	}
	if strings.TrimSpace(entry.Description) == "" {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "descrição do log de auditoria não pode ser vazia")
	}

	normalizedSeverity := strings.ToUpper(strings.TrimSpace(entry.Severity))
	if !models.ValidSeverities[normalizedSeverity] {
		if entry.Severity != "" {
			appLogger.Warnf("Nível de severidade inválido '%s' fornecido para log. Usando 'INFO'. Ação: %s", entry.Severity, entry.Action)
		}
		normalizedSeverity = "INFO"
	}
	entry.Severity = normalizedSeverity
	entry.UserID = userID

	// 2. Limites de tamanho
	if len(entry.Description) > 4000 {
		entry.Description = entry.Description[:3997] + "..."
		appLogger.Warnf("Descrição do log de auditoria truncada para 4000 caracteres. Ação: %s", entry.Action)
	}

	// 3. Timestamp
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.clock.Now().UTC()
	}

	// 4. Persistir o log
	if _, err := s.repo.Create(ctx, entry); err != nil {
		return appErrors.WrapErrorf(err, "falha ao persistir log de auditoria (Ação: %s)", entry.Action)
	}
	return nil
}

// GetAuditLogs busca logs de auditoria com base nos filtros fornecidos.
func (s *auditLogServiceImpl) GetAuditLogs(ctx context.Context, userID string, filter repositories.AuditLogFilter) ([]models.AuditLogEntry, int64, error) {
	if err := requireUser(userID); err != nil {
		return nil, 0, err
	}

	// Validação e normalização dos parâmetros de paginação.
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
		appLogger.Warnf("Solicitação de GetAuditLogs com limite > 1000. Reduzido para 1000.")
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.StartDate != nil {
		v := filter.StartDate.In(time.UTC)
		filter.StartDate = &v
	}
	if filter.EndDate != nil {
		v := filter.EndDate.In(time.UTC)
		filter.EndDate = &v
	}

	logs, totalCount, err := s.repo.GetFiltered(ctx, userID, filter)
	if err != nil {
		return nil, 0, appErrors.WrapErrorf(err, "falha ao buscar logs de auditoria do repositório")
	}
	return logs, totalCount, nil
}

// logBestEffort grava a entrada e apenas avisa em caso de falha.
func logBestEffort(ctx context.Context, audit AuditLogService, userID string, entry models.AuditLogEntry) {
	if audit == nil {
		return
	}
	if err := audit.LogAction(ctx, userID, entry); err != nil {
		appLogger.Warnf("Falha ao registrar log de auditoria (%s): %v", entry.Action, err)
	}
}

func entityRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
