package services

import (
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// Nomes dos hooks do SnapshotStore, na ordem em que rodam.
const (
	HookRecurringExtension       = "extensao_recorrente"
	HookCommissionReconciliation = "reconciliacao_comissoes"
)

// Services agrupa os serviços da aplicação ligados ao mesmo SnapshotStore.
type Services struct {
	Store        SnapshotStore
	AuditLog     AuditLogService
	Boletos      BoletoService
	Transactions TransactionService
	Registry     RegistryService
	Quotations   QuotationService
	Claims       ClaimService
	Events       EventService
	Export       ExportService
	CNPJ         CNPJLookup
	Plates       PlateLookup
}

// New monta os serviços e registra os hooks de derivação do snapshot:
// primeiro a extensão das séries indeterminadas, depois a reconciliação das
// comissões previstas (que precisa enxergar os boletos recém-criados).
// Cache e Locker em storeOpts são opcionais.
func New(repos *repositories.Repositories, storeOpts SnapshotStoreOptions, cfg *core.Config, clock Clock) *Services {
	if repos == nil || cfg == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para services.New")
	}
	if storeOpts.MemoryTTL == 0 {
		storeOpts.MemoryTTL = cfg.SnapshotCacheTTL
	}

	store := NewSnapshotStore(repos.Snapshots, clock, storeOpts)
	audit := NewAuditLogService(repos.AuditLogs, clock)
	boletos := NewBoletoService(repos, store, audit, clock)

	store.AddHook(HookRecurringExtension, boletos.ExtendRecurringSeries)
	store.AddHook(HookCommissionReconciliation, boletos.ReconcileExpectedCommissions)

	return &Services{
		Store:        store,
		AuditLog:     audit,
		Boletos:      boletos,
		Transactions: NewTransactionService(repos.Transactions, store, audit, clock),
		Registry:     NewRegistryService(repos.Clients, repos.Representations, store),
		Quotations:   NewQuotationService(repos.Quotations, store),
		Claims:       NewClaimService(repos.Claims, store, audit, clock),
		Events:       NewEventService(repos.Events, store),
		Export:       NewExportService(store),
		CNPJ:         NewCNPJLookup(cfg.CNPJAPIURL, cfg.LookupTimeout),
		Plates:       NewPlateLookup(cfg.PlateAPIURL, cfg.PlateAPIToken, cfg.LookupTimeout),
	}
}
