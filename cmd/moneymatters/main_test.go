package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", cfgPath))
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute %v failed: %v", args, err)
	}
	return out.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "moneymatters.toml")
	content := "[database]\npath = \"" + filepath.Join(dir, "db.sqlite") + "\"\n\n[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Run("migrate creates the database", func(t *testing.T) {
		runCommand(t, cfgPath, "migrate")
		if _, err := os.Stat(filepath.Join(dir, "db.sqlite")); err != nil {
			t.Errorf("database file missing after migrate: %v", err)
		}
	})

	t.Run("status reports row counts after seeding", func(t *testing.T) {
		runCommand(t, cfgPath, "seed")
		out := runCommand(t, cfgPath, "status")
		if !strings.Contains(out, "users               1") {
			t.Errorf("status output missing seeded user count:\n%s", out)
		}
		if !strings.Contains(out, "accounts            5") {
			t.Errorf("status output missing seeded account count:\n%s", out)
		}
	})
}
