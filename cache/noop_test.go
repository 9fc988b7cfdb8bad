package cache

import (
	"context"
	"testing"
	"time"

	"quotedesk/config"
)

func TestNoop(t *testing.T) {
	var c Noop
	ctx := context.Background()
	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	v, err := c.Get(ctx, "k")
	if err != nil || v != "" {
		t.Errorf("Get = %q, %v; want empty miss", v, err)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	_, err := NewRedisCache(config.RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Error("expected connection error")
	}
}
