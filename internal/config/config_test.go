package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("database.driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Generation.TopicMaxLength != 100 {
		t.Errorf("generation.topic_max_length = %d, want 100", cfg.Generation.TopicMaxLength)
	}
	if cfg.Generation.JokeLimit != 1024 || cfg.Generation.ExplanationLimit != 1024 {
		t.Errorf("generation limits = %d/%d, want 1024/1024", cfg.Generation.JokeLimit, cfg.Generation.ExplanationLimit)
	}
	if cfg.Voting.MaxRetries != 3 {
		t.Errorf("voting.max_retries = %d, want 3", cfg.Voting.MaxRetries)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("rate_limit.window = %v, want 1m", cfg.RateLimit.Window)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
database:
  driver: postgres
  host: db.internal
  name: jokes
llm:
  provider: groq
  model: llama-3.1-8b-instant
voting:
  timezone: UTC
  max_retries: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "groq" || cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Voting.MaxRetries != 5 {
		t.Errorf("voting.max_retries = %d, want 5", cfg.Voting.MaxRetries)
	}
	if !strings.Contains(cfg.Database.DSN(), "host=db.internal") {
		t.Errorf("postgres DSN = %q, want host=db.internal", cfg.Database.DSN())
	}
}

func TestDatabaseDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: "sqlite", Path: "/tmp/jokes.db"}
	dsn := sqlite.DSN()
	if !strings.HasPrefix(dsn, "file:/tmp/jokes.db?") {
		t.Errorf("sqlite DSN = %q", dsn)
	}
	for _, want := range []string{"_busy_timeout=5000", "_foreign_keys=on"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("sqlite DSN %q missing %s", dsn, want)
		}
	}

	pg := DatabaseConfig{Driver: "postgres", Host: "localhost", Port: 5432, User: "u", Password: "p", Name: "jokes"}
	if got, want := pg.DSN(), "host=localhost port=5432 user=u password=p dbname=jokes sslmode=disable"; got != want {
		t.Errorf("postgres DSN = %q, want %q", got, want)
	}
}

func TestVotingLocation(t *testing.T) {
	c := VotingConfig{}
	loc, err := c.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("empty timezone should resolve to UTC, got %v, %v", loc, err)
	}

	c.Timezone = "Not/AZone"
	if _, err := c.Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q) error = %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
