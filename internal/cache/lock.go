package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

const lockPrefix = "corretora:lock:snapshot:"

// ErrLockNotObtained indica que outra instância segura a trava do usuário.
var ErrLockNotObtained = errors.New("trava do snapshot ocupada")

// Locker serializa o recarregamento do snapshot de um usuário entre instâncias.
type Locker interface {
	// Obtain bloqueia até obter a trava ou desistir. release nunca é nil quando err == nil.
	Obtain(ctx context.Context, userID string) (release func(), err error)
}

// RedisLocker implementa Locker com bsm/redislock.
type RedisLocker struct {
	locker  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	retries int
}

// NewRedisLocker cria o Locker. ttl limita quanto tempo uma instância que caiu
// segura a trava; a espera total é de cerca de backoff*retries.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		locker:  redislock.New(client),
		ttl:     ttl,
		backoff: 100 * time.Millisecond,
		retries: 50,
	}
}

// LockKey devolve a chave Redis da trava do usuário.
func LockKey(userID string) string {
	return lockPrefix + userID
}

func (l *RedisLocker) Obtain(ctx context.Context, userID string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	}
	lock, err := l.locker.Obtain(ctx, LockKey(userID), l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtendo trava do snapshot: %w", err)
	}
	return func() {
		// O contexto da requisição pode já ter sido cancelado.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			appLogger.Warnf("Falha ao liberar trava do snapshot (usuário %s): %v", userID, err)
		}
	}, nil
}
