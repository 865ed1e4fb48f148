package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	"github.com/Dukorsa/APP_CORRETORA_GO/internal/data/models"
)

func TestKey(t *testing.T) {
	if got := Key("u1"); got != "corretora:snapshot:u1" {
		t.Fatalf("Key = %s", got)
	}
}

func TestConnectDisabledWithoutAddr(t *testing.T) {
	client, err := Connect(context.Background(), &core.Config{})
	if err != nil || client != nil {
		t.Fatalf("sem endereço o cache deve ficar desligado: %v %v", client, err)
	}
}

func TestUnreachableRedisReturnsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedisSnapshotCache(client, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "u1"); err == nil || ok {
		t.Fatalf("Get deveria falhar: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, &models.Snapshot{UserID: "u1"}); err == nil {
		t.Fatalf("Set deveria falhar")
	}
	if err := c.Set(ctx, nil); err != nil {
		t.Fatalf("Set(nil) não faz nada: %v", err)
	}
}
