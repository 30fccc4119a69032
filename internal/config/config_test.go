package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cfg, err := Parse(`
ttl = 500
max_call_depth = 50

[log]
level = "debug"
file = "/tmp/sandpy.log"

[output]
format = "yaml"

[store]
driver = "sqlite3"
dsn = "runs.db"
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTL != 500 || cfg.MaxCallDepth != 50 {
		t.Errorf("limits wrong: %+v", cfg)
	}
	if cfg.MaxAllocBytes != DefaultMaxAllocBytes {
		t.Errorf("expected default max_alloc_bytes, got %d", cfg.MaxAllocBytes)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/sandpy.log" {
		t.Errorf("log wrong: %+v", cfg.Log)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("output wrong: %+v", cfg.Output)
	}
	if cfg.Store.Driver != "sqlite3" || cfg.Store.DSN != "runs.db" {
		t.Errorf("store wrong: %+v", cfg.Store)
	}
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"ttl = -1", "ttl must not be negative"},
		{"max_alloc_bytes = -5", "max_alloc_bytes must not be negative"},
		{"[output]\nformat = \"xml\"", "output.format must be one of"},
		{"[store]\ndriver = \"oracle\"\ndsn = \"x\"", "store.driver must be one of"},
		{"[store]\ndriver = \"mysql\"", "store.dsn is required"},
		{"fuel = 10", "unknown keys: fuel"},
		{"ttl = ", "config:"},
	}

	for i, tt := range tests {
		_, err := Parse(tt.input)
		if err == nil {
			t.Fatalf("tests[%d] - expected error for %q", i, tt.input)
		}
		if !strings.Contains(err.Error(), tt.message) {
			t.Errorf("tests[%d] - expected message containing %q, got %q", i, tt.message, err.Error())
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandpy.toml")
	if err := os.WriteFile(path, []byte("ttl = 42\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTL != 42 {
		t.Errorf("expected ttl=42, got %d", cfg.TTL)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
