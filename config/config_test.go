package config

import (
	"testing"
	"time"
)

func TestDefaultsApplied(t *testing.T) {
	cfg := &AppConfig{}
	normalizeConfig(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.DBPath != "mdip.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
	if cfg.SLA.UrgentHours != 4 || cfg.SLA.LowHours != 72 {
		t.Fatalf("unexpected sla defaults %+v", cfg.SLA)
	}
	if cfg.Assistant.Model != "gemini-1.5-flash" {
		t.Fatalf("unexpected assistant model %q", cfg.Assistant.Model)
	}
	if cfg.Bootstrap.AdminUsername != "admin" {
		t.Fatalf("unexpected bootstrap admin %q", cfg.Bootstrap.AdminUsername)
	}
}

func TestEnvAliases(t *testing.T) {
	t.Setenv("MDIP_PORT", "9090")
	t.Setenv("MDIP_SESSION_TTL_MIN", "30")
	t.Setenv("MDIP_SEED_DATA_DIR", "/srv/data")
	t.Setenv("GEMINI_API_KEY_CYBER", "k-cyber")

	cfg := &AppConfig{ListenAddr: "0.0.0.0:8080"}
	applyEnvAliases(cfg)
	if cfg.ListenAddr != "0.0.0.0:9090" {
		t.Fatalf("port alias not applied: %q", cfg.ListenAddr)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("session ttl alias not applied: %s", cfg.SessionTTL)
	}
	if cfg.Seed.DataDir != "/srv/data" {
		t.Fatalf("seed dir alias not applied: %q", cfg.Seed.DataDir)
	}
	if cfg.Assistant.CyberKey != "k-cyber" {
		t.Fatalf("assistant key not applied: %q", cfg.Assistant.CyberKey)
	}
}

func TestValidateRejectsBadDriver(t *testing.T) {
	cfg := &AppConfig{DBDriver: "oracle"}
	normalizeConfig(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unsupported driver")
	}
}

func TestValidateRequiresURLForPostgres(t *testing.T) {
	cfg := &AppConfig{DBDriver: "postgres"}
	normalizeConfig(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for postgres without db_url")
	}
}

func TestValidateSLAMonotonic(t *testing.T) {
	cfg := &AppConfig{}
	normalizeConfig(cfg)
	applyDefaults(cfg)
	cfg.SLA.UrgentHours = 100
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for non-monotonic SLA thresholds")
	}
}
