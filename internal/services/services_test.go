package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core/types"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/datatest"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

const testUser = "user-1"

// 2024-03-01 é uma sexta-feira.
var fixedNow = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(now time.Time) Clock {
	return func() time.Time { return now }
}

type testEnv struct {
	db    *gorm.DB
	repos *repositories.Repositories
	svc   *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, nil)
}

func newTestEnvWithCache(t *testing.T, snapshotCache *memoryCache) *testEnv {
	t.Helper()
	var opts SnapshotStoreOptions
	if snapshotCache != nil {
		opts.Cache = snapshotCache
	}
	return newTestEnvWithOptions(t, fixedClock(fixedNow), opts)
}

func newTestEnvWithOptions(t *testing.T, clock Clock, opts SnapshotStoreOptions) *testEnv {
	t.Helper()
	appLogger.Discard()
	db := datatest.Open(t)
	repos := repositories.NewGormRepositories(db)
	cfg := &core.Config{CNPJAPIURL: "http://127.0.0.1:1/cnpj", LookupTimeout: time.Second}
	return &testEnv{db: db, repos: repos, svc: New(repos, opts, cfg, clock)}
}

func intp(v int) *int { return &v }

func datep(s string) *types.Date {
	d := types.MustParseDate(s)
	return &d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// seedClient cadastra um cliente e devolve seu ID.
func (e *testEnv) seedClient(t *testing.T, nome string) string {
	t.Helper()
	snap, err := e.svc.Registry.CreateClient(context.Background(), testUser, ClientInput{
		Nome:     nome,
		Vehicles: []VehicleInput{{Placa: "ABC1D23"}},
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	for _, c := range snap.Clients {
		if c.Nome == nome {
			return c.ID
		}
	}
	t.Fatalf("cliente %s não apareceu no snapshot", nome)
	return ""
}

// seedRepresentation cadastra uma representação e devolve seu ID.
func (e *testEnv) seedRepresentation(t *testing.T, nome string, day *int) string {
	t.Helper()
	snap, err := e.svc.Registry.CreateRepresentation(context.Background(), testUser, RepresentationInput{Nome: nome, CommissionDay: day})
	if err != nil {
		t.Fatalf("CreateRepresentation: %v", err)
	}
	for _, r := range snap.Representations {
		if r.Nome == nome {
			return r.ID
		}
	}
	t.Fatalf("representação %s não apareceu no snapshot", nome)
	return ""
}

func commissions(snap *models.Snapshot, boletoID string, kind models.CommissionKind) []models.Transaction {
	var out []models.Transaction
	for _, tx := range snap.Transactions {
		if tx.SourceBoletoID == boletoID && tx.CommissionKind == kind {
			out = append(out, tx)
		}
	}
	return out
}

func countCommissions(snap *models.Snapshot, kind models.CommissionKind) int {
	n := 0
	for _, tx := range snap.Transactions {
		if tx.CommissionKind == kind {
			n++
		}
	}
	return n
}

// memoryCache é um SnapshotCache em memória para os testes do store.
type memoryCache struct {
	mu    sync.Mutex
	snaps map[string]*models.Snapshot
	sets  int
	fail  bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{snaps: make(map[string]*models.Snapshot)}
}

func (c *memoryCache) Get(ctx context.Context, userID string) (*models.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, false, errors.New("cache fora do ar")
	}
	s, ok := c.snaps[userID]
	return s, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, snap *models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("cache fora do ar")
	}
	c.sets++
	c.snaps[snap.UserID] = snap
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, userID)
	return nil
}

func TestSnapshotStoreUsesCacheAndNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	env := newTestEnvWithCache(t, cache)

	var received []*models.Snapshot
	unsubscribe := env.svc.Store.Subscribe(testUser, func(s *models.Snapshot) { received = append(received, s) })

	env.seedClient(t, "Maria")
	if len(received) != 1 {
		t.Fatalf("esperava 1 notificação, veio %d", len(received))
	}
	if cache.sets != 1 {
		t.Fatalf("esperava 1 gravação no cache, veio %d", cache.sets)
	}

	unsubscribe()
	unsubscribe()
	env.seedClient(t, "João")
	if len(received) != 1 {
		t.Fatalf("assinante removido não deveria ser notificado (%d)", len(received))
	}

	// Um store novo sobre o mesmo cache lê o snapshot sem ir ao banco.
	other := NewSnapshotStore(env.repos.Snapshots, fixedClock(fixedNow), SnapshotStoreOptions{Cache: cache})
	snap, err := other.GetSnapshot(ctx, testUser)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.Clients) != 2 {
		t.Fatalf("esperava 2 clientes do cache, veio %d", len(snap.Clients))
	}
}

func TestSnapshotStoreCacheFailureIsNotFatal(t *testing.T) {
	cache := newMemoryCache()
	cache.fail = true
	env := newTestEnvWithCache(t, cache)

	env.seedClient(t, "Maria")
	snap, err := env.svc.Store.GetSnapshot(context.Background(), testUser)
	if err != nil {
		t.Fatalf("falha do cache não deveria propagar: %v", err)
	}
	if len(snap.Clients) != 1 {
		t.Fatalf("esperava 1 cliente, veio %d", len(snap.Clients))
	}
}

func TestSnapshotStoreHookFailureKeepsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	calls := 0
	env.svc.Store.AddHook("falha", func(ctx context.Context, userID string, snap *models.Snapshot) (bool, error) {
		calls++
		return false, errors.New("hook quebrado")
	})

	env.seedClient(t, "Maria")
	snap, err := env.svc.Store.Refetch(context.Background(), testUser)
	if err != nil {
		t.Fatalf("Refetch não deveria falhar por causa do hook: %v", err)
	}
	if calls != 2 || len(snap.Clients) != 1 {
		t.Fatalf("calls=%d clients=%d", calls, len(snap.Clients))
	}
}

func TestOperationsRequireUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	checks := map[string]error{}
	_, checks["GetSnapshot"] = env.svc.Store.GetSnapshot(ctx, "")
	_, checks["CreateBoleto"] = env.svc.Boletos.CreateBoleto(ctx, "", BoletoInput{})
	_, checks["MarkPaid"] = env.svc.Boletos.MarkPaid(ctx, " ", "x", nil)
	_, checks["CreateTransaction"] = env.svc.Transactions.Create(ctx, "", TransactionInput{})
	_, checks["CreateClient"] = env.svc.Registry.CreateClient(ctx, "", ClientInput{})
	_, checks["UpdateStatus"] = env.svc.Claims.UpdateStatus(ctx, "", "x", models.ClaimApproved, "")
	checks["ExportBoletos"] = env.svc.Export.ExportBoletos(ctx, "", nil, FormatXLSX)

	for name, err := range checks {
		if !errors.Is(err, core.ErrUnauthorized) {
			t.Errorf("%s: esperava ErrUnauthorized, veio %v", name, err)
		}
	}
}
