// Package cache guarda snapshots já mapeados no Redis, por usuário.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

const keyPrefix = "corretora:snapshot:"

// SnapshotCache é o armazenamento opcional de snapshots.
type SnapshotCache interface {
	// Get devolve ok=false quando não há snapshot guardado.
	Get(ctx context.Context, userID string) (snap *models.Snapshot, ok bool, err error)
	Set(ctx context.Context, snap *models.Snapshot) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisSnapshotCache implementa SnapshotCache com JSON no Redis.
type RedisSnapshotCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSnapshotCache cria o cache sobre um cliente já conectado.
func NewRedisSnapshotCache(client redis.UniversalClient, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

// Connect abre o cliente Redis da configuração e testa a conexão.
// Devolve nil, nil quando APP_REDIS_ADDR está vazio (cache desligado).
func Connect(ctx context.Context, cfg *core.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		appLogger.Info("APP_REDIS_ADDR não definido; cache de snapshot desligado.")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 20,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("falha ao conectar ao redis em %s: %w", cfg.RedisAddr, err)
	}
	appLogger.Infof("Conectado ao redis (addr=%s db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return client, nil
}

// Key devolve a chave Redis do snapshot do usuário.
func Key(userID string) string {
	return keyPrefix + userID
}

func (c *RedisSnapshotCache) Get(ctx context.Context, userID string) (*models.Snapshot, bool, error) {
	val, err := c.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lendo snapshot do cache: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, false, fmt.Errorf("decodificando snapshot do cache: %w", err)
	}
	return &snap, true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("codificando snapshot: %w", err)
	}
	if err := c.client.Set(ctx, Key(snap.UserID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("gravando snapshot no cache: %w", err)
	}
	return nil
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("removendo snapshot do cache: %w", err)
	}
	return nil
}
