package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()
	if cfg.Port != "5000" || cfg.MongoDatabase != "foodies" || !cfg.MongoTransactions {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.SessionTTL != time.Hour || cfg.PasswordResetTTL != time.Hour || cfg.BcryptCost != 12 {
		t.Fatalf("unexpected auth defaults %+v", cfg)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.AllowOrigins)
	}
	if cfg.StorageEnabled() {
		t.Fatalf("storage should be disabled without MinIO settings")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("ALLOW_ORIGINS", " https://a.test , ,https://b.test")
	t.Setenv("MONGO_TRANSACTIONS", "false")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "key")
	t.Setenv("MINIO_SECRET_KEY", "secret")

	cfg := Load()
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("session ttl = %s", cfg.SessionTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("malformed cost should fall back, got %d", cfg.BcryptCost)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://b.test" {
		t.Fatalf("unexpected origins %v", cfg.AllowOrigins)
	}
	if cfg.MongoTransactions {
		t.Fatalf("transactions should be disabled")
	}
	if !cfg.StorageEnabled() {
		t.Fatalf("storage should be enabled")
	}
}

func TestLoadPanicsWithoutSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("JWT_SECRET", "")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing JWT_SECRET")
		}
	}()
	Load()
}
