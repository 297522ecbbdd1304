package runtime

import (
	"testing"
	"time"
)

func TestNewPoolConfig_KeepsSingleSession(t *testing.T) {
	cfg, err := newPoolConfig("host=localhost port=5432 user=postgres dbname=orders sslmode=disable")
	if err != nil {
		t.Fatalf("newPoolConfig failed: %v", err)
	}

	if cfg.MaxConns != 1 || cfg.MinConns != 1 {
		t.Errorf("MaxConns/MinConns = %d/%d, want 1/1", cfg.MaxConns, cfg.MinConns)
	}
	// pgxpool's defaults are one hour and thirty minutes; a run must outlive both
	if cfg.MaxConnLifetime < 24*time.Hour {
		t.Errorf("MaxConnLifetime = %s, connection would be recycled mid-run", cfg.MaxConnLifetime)
	}
	if cfg.MaxConnLifetimeJitter != 0 {
		t.Errorf("MaxConnLifetimeJitter = %s, want 0", cfg.MaxConnLifetimeJitter)
	}
	if cfg.MaxConnIdleTime < 24*time.Hour {
		t.Errorf("MaxConnIdleTime = %s, connection would be reaped while idle", cfg.MaxConnIdleTime)
	}
}

func TestNewPoolConfig_InvalidURL(t *testing.T) {
	if _, err := newPoolConfig("postgres://localhost:notaport/orders"); err == nil {
		t.Error("expected error for malformed URL")
	}
}
