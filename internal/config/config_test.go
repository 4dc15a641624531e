package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("KURI_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("KURI_ADDR", "")
	t.Setenv("KURI_DB_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("want defaults, got %+v", cfg)
	}
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kuri.yaml")
	if err := os.WriteFile(path, []byte("addr: 0.0.0.0:9090\ndb_path: from-yaml.db\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("KURI_CONFIG", path)
	t.Setenv("KURI_ADDR", "")
	t.Setenv("KURI_DB_PATH", "from-env.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Le YAML fournit l'adresse, l'env écrase le chemin DB.
	if cfg.Addr != "0.0.0.0:9090" {
		t.Fatalf("addr: got %q", cfg.Addr)
	}
	if cfg.DBPath != "from-env.db" {
		t.Fatalf("db_path: got %q", cfg.DBPath)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kuri.yaml")
	if err := os.WriteFile(path, []byte("addr: [broken\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("KURI_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}
