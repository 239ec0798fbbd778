package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Fatalf("expected ssl mode disable, got %s", cfg.Database.SSLMode)
	}
	if cfg.Session.CookieName != "session_id" {
		t.Fatalf("expected default session cookie name, got %s", cfg.Session.CookieName)
	}
	if cfg.Upload.MaxSizeMB != 5 {
		t.Fatalf("expected 5MB upload cap, got %d", cfg.Upload.MaxSizeMB)
	}
	if cfg.Kafka.Topics.Orders != "orders" {
		t.Fatalf("expected orders topic, got %s", cfg.Kafka.Topics.Orders)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("rate limiting should be disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("SESSION_TTL_HOURS", "48")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	if cfg.Server.Port != "9999" {
		t.Fatalf("expected port override, got %s", cfg.Server.Port)
	}
	if cfg.Session.TTLHours != 48 {
		t.Fatalf("expected session ttl 48, got %d", cfg.Session.TTLHours)
	}
	if !cfg.RateLimit.Enabled {
		t.Fatalf("expected rate limiting enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-number")
	cfg := Load()
	if cfg.Server.ReadTimeout != 10 {
		t.Fatalf("expected default read timeout on parse error, got %d", cfg.Server.ReadTimeout)
	}
}

func TestSMTPConfig_Enabled(t *testing.T) {
	c := SMTPConfig{}
	if c.Enabled() {
		t.Fatalf("empty smtp config must be disabled")
	}
	c = SMTPConfig{Host: "smtp.example.com", User: "u", Password: "p"}
	if !c.Enabled() {
		t.Fatalf("expected smtp enabled")
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Unsetenv("BOOL_TEST")
	if getEnvAsBool("BOOL_TEST", true) != true {
		t.Fatalf("expected default true")
	}
	t.Setenv("BOOL_TEST", "no")
	if getEnvAsBool("BOOL_TEST", true) != false {
		t.Fatalf("expected false for 'no'")
	}
	t.Setenv("BOOL_TEST", "1")
	if getEnvAsBool("BOOL_TEST", false) != true {
		t.Fatalf("expected true for '1'")
	}
}
