package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "port: 2380\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 2380 {
		t.Fatalf("port = %d, want 2380", cfg.Port)
	}
	if cfg.Auth.OTPTTL() != 10*time.Minute {
		t.Fatalf("otp ttl = %v, want 10m", cfg.Auth.OTPTTL())
	}
	if cfg.Auth.OTPCodeLength != 6 {
		t.Fatalf("code length = %d, want 6", cfg.Auth.OTPCodeLength)
	}
	if cfg.Auth.OTPMaxAttempts != 5 {
		t.Fatalf("max attempts = %d, want 5", cfg.Auth.OTPMaxAttempts)
	}
	if cfg.Auth.SessionTTL() != 8*time.Hour {
		t.Fatalf("session ttl = %v, want 8h", cfg.Auth.SessionTTL())
	}
	if cfg.Auth.ResendCooldown() != time.Minute {
		t.Fatalf("resend cooldown = %v, want 1m", cfg.Auth.ResendCooldown())
	}
	if cfg.Auth.ExposeCode {
		t.Fatal("expose_code defaults on")
	}
	if cfg.DSN == "" || cfg.RedisURL == "" {
		t.Fatalf("derived DSN/RedisURL empty: %q / %q", cfg.DSN, cfg.RedisURL)
	}
	if !cfg.IsDev() {
		t.Fatal("default env should be development")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
port: 9000
env: development
jwt_secret: topsecret
timezone: +05:30
auth:
  otp_ttl_minutes: 5
  otp_code_length: 8
  otp_max_attempts: 3
  otp_resend_cooldown_seconds: 30
  session_ttl_hours: 24
  expose_code: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsDev() {
		t.Fatal("env development not detected")
	}
	if cfg.JWTSecret != "topsecret" {
		t.Fatalf("jwt_secret = %q", cfg.JWTSecret)
	}
	if cfg.Auth.OTPTTL() != 5*time.Minute {
		t.Fatalf("otp ttl = %v, want 5m", cfg.Auth.OTPTTL())
	}
	if cfg.Auth.OTPCodeLength != 8 {
		t.Fatalf("code length = %d, want 8", cfg.Auth.OTPCodeLength)
	}
	if cfg.Auth.SessionTTL() != 24*time.Hour {
		t.Fatalf("session ttl = %v, want 24h", cfg.Auth.SessionTTL())
	}
	if !cfg.Auth.ExposeCode {
		t.Fatal("expose_code not applied")
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	_, offset := time.Date(2026, 8, 23, 12, 0, 0, 0, loc).Zone()
	if offset != 5*3600+30*60 {
		t.Fatalf("offset = %d, want +05:30", offset)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"short code", "auth:\n  otp_code_length: 3\n"},
		{"negative ttl", "auth:\n  otp_ttl_minutes: -1\n"},
		{"bad port", "port: 70000\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"unknown field", "prot: 2380\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Fatal("Load accepted invalid config")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}

func TestLoadNodeEnvAlias(t *testing.T) {
	path := writeConfig(t, "node_env: production\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDev() {
		t.Fatal("node_env alias ignored")
	}
}
