package redisx

import (
	"testing"

	"jrm-intake-api/internal/config"
)

func TestOpenNotConfigured(t *testing.T) {
	rdb, closeFn, err := Open(&config.Config{})
	if err != nil || rdb != nil {
		t.Fatalf("expected nil client, got %v %v", rdb, err)
	}
	closeFn()
}

func TestOpenUnreachable(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Addr = "127.0.0.1:1"
	rdb, closeFn, err := Open(cfg)
	if err == nil {
		t.Fatalf("expected dial error")
	}
	if rdb != nil {
		t.Fatalf("client must be nil on error")
	}
	closeFn()
}
