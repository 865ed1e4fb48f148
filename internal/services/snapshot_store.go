package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/billing"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/cache"
	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/repositories"
)

// SnapshotHook roda sobre o snapshot recém-carregado, com os status gravados.
// wrote indica que o hook gravou no banco e o snapshot precisa ser relido.
type SnapshotHook func(ctx context.Context, userID string, snap *models.Snapshot) (wrote bool, err error)

// SnapshotStore mantém a visão completa dos dados de cada usuário.
type SnapshotStore interface {
	// GetSnapshot devolve o snapshot atual, carregando-o no primeiro acesso.
	GetSnapshot(ctx context.Context, userID string) (*models.Snapshot, error)
	// Refetch recarrega tudo do banco, roda os hooks e notifica os assinantes.
	Refetch(ctx context.Context, userID string) (*models.Snapshot, error)
	// Subscribe registra fn para receber cada snapshot novo do usuário.
	Subscribe(userID string, fn func(*models.Snapshot)) (unsubscribe func())
	// AddHook registra uma derivação executada a cada Refetch, na ordem de registro.
	AddHook(name string, hook SnapshotHook)
}

type namedHook struct {
	name string
	fn   SnapshotHook
}

// DefaultMemoryTTL é a validade do snapshot em memória quando não há cache externo.
const DefaultMemoryTTL = 5 * time.Minute

// SnapshotStoreOptions reúne as dependências opcionais do store.
type SnapshotStoreOptions struct {
	// Cache, quando presente, substitui a memória local do processo.
	Cache cache.SnapshotCache
	// Locker serializa o Refetch de um usuário entre instâncias.
	Locker cache.Locker
	// MemoryTTL vale só sem Cache. Zero usa DefaultMemoryTTL.
	MemoryTTL time.Duration
}

type memoryEntry struct {
	snap     *models.Snapshot
	loadedAt time.Time
}

type snapshotStoreImpl struct {
	repo      repositories.SnapshotRepository
	cache     cache.SnapshotCache
	locker    cache.Locker
	clock     Clock
	memoryTTL time.Duration

	mu        sync.RWMutex
	snapshots map[string]memoryEntry // status gravados, sem overdue
	hooks     []namedHook

	refetching keyedMutex

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[string]map[int]func(*models.Snapshot)
}

// NewSnapshotStore cria o store.
func NewSnapshotStore(repo repositories.SnapshotRepository, clock Clock, opts SnapshotStoreOptions) SnapshotStore {
	if repo == nil {
		appLogger.Fatalf("SnapshotRepository não pode ser nil para NewSnapshotStore")
	}
	ttl := opts.MemoryTTL
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &snapshotStoreImpl{
		repo:        repo,
		cache:       opts.Cache,
		locker:      opts.Locker,
		clock:       clock,
		memoryTTL:   ttl,
		snapshots:   make(map[string]memoryEntry),
		subscribers: make(map[string]map[int]func(*models.Snapshot)),
	}
}

func (s *snapshotStoreImpl) AddHook(name string, hook SnapshotHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: hook})
}

func (s *snapshotStoreImpl) GetSnapshot(ctx context.Context, userID string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	snap := s.stored(ctx, userID)
	if snap == nil {
		return s.Refetch(ctx, userID)
	}
	// Séries indeterminadas que chegaram ao horizonte precisam dos hooks.
	if len(billing.PlanRecurringExtensions(snap.Boletos, s.clock.Today())) > 0 {
		return s.Refetch(ctx, userID)
	}
	return s.present(snap), nil
}

// stored devolve o último snapshot guardado, do cache externo ou da memória.
func (s *snapshotStoreImpl) stored(ctx context.Context, userID string) *models.Snapshot {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, userID)
		if err != nil {
			appLogger.Warnf("Falha ao ler snapshot do cache (usuário %s): %v", userID, err)
			return nil
		}
		if !found {
			return nil
		}
		return cached
	}

	s.mu.RLock()
	entry, ok := s.snapshots[userID]
	s.mu.RUnlock()
	if !ok || s.clock.Now().Sub(entry.loadedAt) >= s.memoryTTL {
		return nil
	}
	return entry.snap
}

func (s *snapshotStoreImpl) remember(snap *models.Snapshot) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.snapshots {
		if now.Sub(entry.loadedAt) >= s.memoryTTL {
			delete(s.snapshots, id)
		}
	}
	s.snapshots[snap.UserID] = memoryEntry{snap: snap, loadedAt: now}
}

// cachedUsers devolve quantos snapshots estão na memória local.
func (s *snapshotStoreImpl) cachedUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

func (s *snapshotStoreImpl) Refetch(ctx context.Context, userID string) (*models.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	snap, err := s.reload(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.notify(userID, snap)
	return s.present(snap), nil
}

// reload carrega, roda os hooks e guarda o snapshot. Hooks planejam e gravam,
// então dois reloads simultâneos do mesmo usuário duplicariam parcelas.
func (s *snapshotStoreImpl) reload(ctx context.Context, userID string) (*models.Snapshot, error) {
	unlock := s.refetching.Lock(userID)
	defer unlock()

	runHooks := true
	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, userID)
		switch {
		case err == nil:
			defer release()
		case errors.Is(err, cache.ErrLockNotObtained):
			appLogger.Warnf("Trava do snapshot ocupada (usuário %s); recarregando sem derivações.", userID)
			runHooks = false
		default:
			appLogger.Warnf("Trava distribuída indisponível (usuário %s), seguindo só com a local: %v", userID, err)
		}
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var hooks []namedHook
	if runHooks {
		s.mu.RLock()
		hooks = append(hooks, s.hooks...)
		s.mu.RUnlock()
	}

	// Hooks são best-effort: a falha é logada e o snapshot segue.
	for _, h := range hooks {
		wrote, err := h.fn(ctx, userID, snap)
		if err != nil {
			appLogger.Warnf("Derivação '%s' falhou para o usuário %s: %v", h.name, userID, err)
			continue
		}
		if !wrote {
			continue
		}
		reloaded, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		snap = reloaded
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			appLogger.Warnf("Falha ao gravar snapshot no cache (usuário %s): %v", userID, err)
		}
	} else {
		s.remember(snap)
	}
	return snap, nil
}

func (s *snapshotStoreImpl) load(ctx context.Context, userID string) (*models.Snapshot, error) {
	rows, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap, err := models.ToSnapshot(userID, rows, s.clock.Now().UTC())
	if err != nil {
		return nil, appErrors.WrapErrorf(appErrors.ErrInternal, "mapeando snapshot do usuário %s: %v", userID, err)
	}
	return snap, nil
}

// present devolve uma cópia independente com o status exibido calculado para hoje.
func (s *snapshotStoreImpl) present(snap *models.Snapshot) *models.Snapshot {
	out := snap.Clone()
	out.Boletos = billing.ApplyPresentation(out.Boletos, s.clock.Today())
	return out
}

func (s *snapshotStoreImpl) Subscribe(userID string, fn func(*models.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	if s.subscribers[userID] == nil {
		s.subscribers[userID] = make(map[int]func(*models.Snapshot))
	}
	s.subscribers[userID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subscribers[userID], id)
			if len(s.subscribers[userID]) == 0 {
				delete(s.subscribers, userID)
			}
		})
	}
}

func (s *snapshotStoreImpl) notify(userID string, snap *models.Snapshot) {
	s.subMu.Lock()
	listeners := make([]func(*models.Snapshot), 0, len(s.subscribers[userID]))
	for _, fn := range s.subscribers[userID] {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()
	// Cada assinante recebe a própria cópia.
	for _, fn := range listeners {
		fn(s.present(snap))
	}
}

// keyedMutex é um mutex por chave; entradas sem uso são removidas.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e := k.locks[key]
	if e == nil {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
