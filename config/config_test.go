package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `store:
  backend: "sqlite"
  path: "rota.db"
schedule:
  lookahead_days: 21
  presence_days: 5
availability:
  type: "static"
  conf:
    intervals:
      alice@example.com:
        - start: "2026-03-02"
          end: "2026-03-04"
journal:
  type: "jsonl-rotating"
  conf:
    path: "journal.log"
    max_size_mb: 5
chat:
  broker: "tcp://localhost:1883"
  client_id: "rota"
  username: "user"
  password: "pass"
  ack_topic: "chat/ack"
  use_tls: false
presence:
  addr: "localhost:6379"
  key_prefix: "rota:oncall"
  ttl_hours: 24
notion:
  token: "secret"
  database_id: "db42"
metrics:
  prometheus_addr: ":9090"
  sinks:
    - type: "prometheus"
api:
  addr: ":8080"
  token: "tok"
identity:
  connector: "staff_directory"
  base_url: "https://directory.example.com"
  team: "platform"
  auth:
    client_id: "cid"
    client_secret: "sec"
    auth_url: "https://auth.example.com/token"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"store.backend", cfg.Store.Backend, "sqlite"},
		{"store.path", cfg.Store.Path, "rota.db"},
		{"schedule.lookahead_days", cfg.Schedule.LookaheadDays, 21},
		{"schedule.presence_days", cfg.Schedule.PresenceDays, 5},
		{"availability.type", cfg.Availability.Type, "static"},
		{"journal.type", cfg.Journal.Type, "jsonl-rotating"},
		{"chat.broker", cfg.Chat.Broker, "tcp://localhost:1883"},
		{"chat.client_id", cfg.Chat.ClientID, "rota"},
		{"chat.ack_topic", cfg.Chat.AckTopic, "chat/ack"},
		{"chat.use_tls", cfg.Chat.UseTLS, false},
		{"presence.addr", cfg.Presence.Addr, "localhost:6379"},
		{"presence.ttl_hours", cfg.Presence.TTLHours, 24},
		{"notion.database_id", cfg.Notion.DatabaseID, "db42"},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9090"},
		{"metrics.sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "prometheus", true},
		{"api.addr", cfg.API.Addr, ":8080"},
		{"api.token", cfg.API.Token, "tok"},
		{"identity.connector", cfg.Identity.Connector, "staff_directory"},
		{"identity.auth.client_id", cfg.Identity.Auth.ClientID, "cid"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}

	if iv, ok := cfg.Availability.Conf["intervals"]; !ok || iv == nil {
		t.Error("availability conf not carried through")
	}
	if cfg.Journal.Conf["path"] != "journal.log" {
		t.Errorf("journal conf path = %v", cfg.Journal.Conf["path"])
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.Path != "rota.db" {
		t.Errorf("store defaults = %+v", cfg.Store)
	}
	if cfg.Schedule.LookaheadDays != 14 {
		t.Errorf("lookahead default = %d", cfg.Schedule.LookaheadDays)
	}
	if cfg.Availability.Type != "none" {
		t.Errorf("availability default = %q", cfg.Availability.Type)
	}
	if cfg.Journal.Type != "jsonl" || cfg.Journal.Conf["path"] != "rota-journal.log" {
		t.Errorf("journal defaults = %+v", cfg.Journal)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "store:\n  backend: \"sqlite\"\n  path: \"rota.db\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROTA_STORE__BACKEND", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("env override ignored, backend = %q", cfg.Store.Backend)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
