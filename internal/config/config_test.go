package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.CookieName == "" {
		t.Fatalf("expected default cookie name")
	}
	if cfg.PostgresMaxConns != 10 {
		t.Fatalf("expected 10 max conns, got %d", cfg.PostgresMaxConns)
	}
	if cfg.OTPTTL != 10*time.Minute {
		t.Fatalf("expected 10m otp ttl, got %v", cfg.OTPTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("OTP_TTL", "2m")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.MongoURI != "mongodb://mongo:27017" {
		t.Fatalf("expected override mongo uri")
	}
	if cfg.GeminiAPIKey != "key" {
		t.Fatalf("expected override gemini key")
	}
	if cfg.OTPTTL != 2*time.Minute {
		t.Fatalf("expected override otp ttl, got %v", cfg.OTPTTL)
	}
	if cfg.RunMigrations {
		t.Fatalf("expected migrations disabled")
	}
}
