package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/repository"
	"github.com/timmy/jokegen/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "jokes.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "database:\n  driver: sqlite\n  path: " + dbPath + "\n  auto_migrate: false\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath, dbPath
}

func TestStemCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"stem", "Running", "dogs"}, want: "run dog"},
		{args: []string{"stem", "the"}, want: "(empty)"},
	}
	for _, tt := range tests {
		out, err := run(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: error = %v", tt.args, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%v: output %q, want it to contain %q", tt.args, out, tt.want)
		}
	}

	if _, err := run(t, "stem"); err == nil {
		t.Error("stem without args should fail")
	}
}

func TestBlockedCmds(t *testing.T) {
	cfgPath, dbPath := writeConfig(t)

	out, err := run(t, "migrate", "--config", cfgPath)
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "Schema up to date") {
		t.Errorf("migrate output = %q", out)
	}

	out, err = run(t, "blocked", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("blocked list error = %v", err)
	}
	if !strings.Contains(out, "No blocked topics") {
		t.Errorf("empty list output = %q", out)
	}

	db, err := repository.InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: dbPath})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	testutil.SeedStemTopic(t, db, "Nasty things", "nasti thing", false)
	testutil.SeedStemTopic(t, db, "Puppies", "puppi", true)
	if err := repository.Close(db); err != nil {
		t.Fatalf("close db: %v", err)
	}

	out, err = run(t, "blocked", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("blocked list error = %v", err)
	}
	if !strings.Contains(out, "nasti thing") || strings.Contains(out, "puppi") {
		t.Errorf("list output = %q", out)
	}

	out, err = run(t, "blocked", "clear", "--config", cfgPath)
	if err != nil {
		t.Fatalf("blocked clear error = %v", err)
	}
	if !strings.Contains(out, "Removed 1") {
		t.Errorf("clear output = %q", out)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := run(t, "blocked", "list", "--config", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
