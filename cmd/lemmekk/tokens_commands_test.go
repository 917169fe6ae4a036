package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTokensLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"tokens", "add", "hunter2", "swordfish", "hunter2"}, env.configPath)
	if err != nil {
		t.Fatalf("tokens add: %v", err)
	}
	requireContains(t, out, "Added 2 of 3 tokens")

	out, _, err = runCLI(t, []string{"tokens", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("tokens list: %v", err)
	}
	requireContains(t, out, "swordfish")
	requireContains(t, out, "never")
	requireContains(t, out, "2 tokens")

	out, _, err = runCLI(t, []string{"tokens", "rm", "hunter2", "unknown"}, env.configPath)
	if err != nil {
		t.Fatalf("tokens remove: %v", err)
	}
	requireContains(t, out, "Removed 1 tokens")

	out, _, err = runCLI(t, []string{"tokens", "list", "--plain"}, env.configPath)
	if err != nil {
		t.Fatalf("tokens list: %v", err)
	}
	if strings.TrimSpace(out) != "swordfish" {
		t.Fatalf("unexpected plain list %q", out)
	}
}

func TestTokensImportExport(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(env.baseDir, "passwords.txt")
	if err := os.WriteFile(source, []byte("alpha\t\t3\nbeta\t\t9\nnot a record\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"tokens", "import", "--format", "jtmdy", source}, env.configPath)
	if err != nil {
		t.Fatalf("tokens import: %v", err)
	}
	requireContains(t, out, "Imported 2 tokens (2 new), skipped 1 malformed lines")

	out, _, err = runCLIWithInput(t, []string{"tokens", "import", "-"}, env.configPath, "gamma\n")
	if err != nil {
		t.Fatalf("tokens import stdin: %v", err)
	}
	requireContains(t, out, "Imported 1 tokens (1 new)")

	out, _, err = runCLI(t, []string{"tokens", "export", "-f", "jtmdy"}, env.configPath)
	if err != nil {
		t.Fatalf("tokens export: %v", err)
	}
	if out != "beta\t\t9\nalpha\t\t3\ngamma\t\t0\n" {
		t.Fatalf("unexpected export %q", out)
	}

	target := filepath.Join(env.baseDir, "out.txt")
	if _, _, err := runCLI(t, []string{"tokens", "export", "-o", target}, env.configPath); err != nil {
		t.Fatalf("tokens export file: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "beta\nalpha\ngamma\n" {
		t.Fatalf("unexpected export file %q", data)
	}
}

func TestTokensImportRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"tokens", "import", "--format", "csv", "-"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
