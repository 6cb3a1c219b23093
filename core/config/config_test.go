package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
telegram:
  token: "123:abc"
  run_mode: longpoll

database:
  host: db.internal
  port: "5432"
  user: relaybot
  password: secret
  name: relaybot
  sslmode: disable
  max_connections: 8

relay:
  owner_id: 42
  owner_username: "@owner"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesDatabaseSection(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	db := cfg.Database
	if db.Host != "db.internal" || db.Port != "5432" || db.Name != "relaybot" {
		t.Fatalf("database section not parsed: %+v", db)
	}
	if db.MaxConnections != 8 {
		t.Fatalf("max_connections = %d, want 8", db.MaxConnections)
	}
}

func TestLoadDatabaseEnvOverride(t *testing.T) {
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Port != "6543" {
		t.Fatalf("env override ignored, port = %q", cfg.Database.Port)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Relay.CooldownSeconds != 10 {
		t.Fatalf("cooldown default = %d, want 10", cfg.Relay.CooldownSeconds)
	}
	if cfg.Relay.ThreadWindowMinutes != 15 {
		t.Fatalf("thread window default = %d, want 15", cfg.Relay.ThreadWindowMinutes)
	}
	if cfg.Relay.PageSize != 20 || cfg.Relay.SearchLimit != 10 {
		t.Fatalf("page defaults wrong: %+v", cfg.Relay)
	}
	if cfg.Health.Listen != ":8080" {
		t.Fatalf("health listen default = %q", cfg.Health.Listen)
	}
}

func TestNormalizeRejectsBadRunMode(t *testing.T) {
	body := testYAML + "\nwebhook:\n  url: \"\"\n"
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Telegram.RunMode = "carrier-pigeon"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected run mode rejection")
	}
}
