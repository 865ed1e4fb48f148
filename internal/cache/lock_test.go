package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

func TestLockKey(t *testing.T) {
	if got := LockKey("u1"); got != "corretora:lock:snapshot:u1" {
		t.Fatalf("LockKey = %s", got)
	}
	if LockKey("u1") == Key("u1") {
		t.Fatal("trava e snapshot não podem dividir a mesma chave")
	}
}

func TestRedisLockerUnreachable(t *testing.T) {
	appLogger.Discard()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	release, err := NewRedisLocker(client, time.Second).Obtain(context.Background(), "u1")
	if err == nil || release != nil {
		t.Fatalf("Obtain deveria falhar sem redis: release=%v err=%v", release != nil, err)
	}
	if errors.Is(err, ErrLockNotObtained) {
		t.Fatalf("falha de conexão não é trava ocupada: %v", err)
	}
}
