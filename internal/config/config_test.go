package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
limits:
  decisions_per_minute: 30
  messages_per_10sec: 5
auth:
  jwt_access_ttl: 30m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.DecisionsPerMinute != 30 {
		t.Fatalf("unexpected decisions_per_minute: %d", cfg.Limits.DecisionsPerMinute)
	}
	if cfg.Limits.MessagesPer10Sec != 5 {
		t.Fatalf("unexpected messages_per_10sec: %d", cfg.Limits.MessagesPer10Sec)
	}
	if cfg.Auth.JWTAccessTTL.String() != "30m0s" {
		t.Fatalf("unexpected jwt access ttl: %s", cfg.Auth.JWTAccessTTL)
	}

	if cfg.Limits.MessagesPerMinute != 60 {
		t.Fatalf("messages_per_minute default should stay 60, got %d", cfg.Limits.MessagesPerMinute)
	}
	if cfg.HTTP.ReadTimeout.String() != "5s" {
		t.Fatalf("read timeout default should stay 5s, got %s", cfg.HTTP.ReadTimeout)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.DecisionsPerMinute != 60 || cfg.Limits.DecisionsPer10Sec != 15 {
		t.Fatalf("unexpected decision limit defaults: %d/%d", cfg.Limits.DecisionsPerMinute, cfg.Limits.DecisionsPer10Sec)
	}
	if cfg.Auth.JWTSecret != "change-me" {
		t.Fatalf("unexpected default jwt secret: %s", cfg.Auth.JWTSecret)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LIMIT_MESSAGES_PER_MINUTE", "12")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected redis db: %d", cfg.Redis.DB)
	}
	if cfg.Limits.MessagesPerMinute != 12 {
		t.Fatalf("unexpected messages_per_minute: %d", cfg.Limits.MessagesPerMinute)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"LIMIT_DECISIONS_PER_MINUTE",
		"LIMIT_DECISIONS_PER_10SEC",
		"LIMIT_MESSAGES_PER_MINUTE",
		"LIMIT_MESSAGES_PER_10SEC",
	} {
		t.Setenv(key, "")
	}
}
