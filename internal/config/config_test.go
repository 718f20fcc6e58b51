package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Port = 8000
	cfg.App.LogLevel = "info"
	cfg.Provider.BaseURL = "https://jsearch.p.rapidapi.com"
	cfg.Provider.TimeoutSeconds = 30
	cfg.Provider.RequestsPerSec = 1
	cfg.Provider.Burst = 2
	cfg.Sync.Queries = []string{"Software Engineer"}
	cfg.Sync.Schedule = "0 0 * * *"
	return cfg
}

func TestNormalizeAndValidateOK(t *testing.T) {
	out, res := NormalizeAndValidate(validConfig())
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if out.App.Port != 8000 {
		t.Fatalf("port changed to %d", out.App.Port)
	}
}

func TestNormalizeDedupesQueries(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.Queries = []string{" Go Developer ", "go developer", "", "Data Engineer"}

	out, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("errors: %v", res.Errors)
	}
	want := []string{"Go Developer", "Data Engineer"}
	if len(out.Sync.Queries) != len(want) {
		t.Fatalf("queries = %v, want %v", out.Sync.Queries, want)
	}
	for i := range want {
		if out.Sync.Queries[i] != want[i] {
			t.Fatalf("queries = %v, want %v", out.Sync.Queries, want)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"bad port":       func(c *Config) { c.App.Port = 0 },
		"huge port":      func(c *Config) { c.App.Port = 70000 },
		"no base url":    func(c *Config) { c.Provider.BaseURL = " " },
		"zero timeout":   func(c *Config) { c.Provider.TimeoutSeconds = 0 },
		"zero rps":       func(c *Config) { c.Provider.RequestsPerSec = 0 },
		"bad cron":       func(c *Config) { c.Sync.Schedule = "every day" },
		"six field cron": func(c *Config) { c.Sync.Schedule = "0 0 * * * *" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			if _, res := NormalizeAndValidate(cfg); res.OK() {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestValidateWarnsOnEmptyQueries(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.Queries = nil
	_, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("errors: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning for empty queries")
	}
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := validConfig()
	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.App.Port != cfg.App.Port || got.Sync.Schedule != cfg.Sync.Schedule {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// A second save keeps the previous file as .bak.
	cfg.App.Port = 9000
	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatalf("second save: %v", err)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("bak missing: %v", err)
	}
	if !strings.Contains(string(bak), "8000") {
		t.Fatal("bak should hold the previous config")
	}
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	cfg := validConfig()
	cfg.App.Port = 0
	if err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	if err := os.WriteFile(defaultPath, []byte("app:\n  port: 8000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if userPath != filepath.Join(dataDir, "config.yml") {
		t.Fatalf("path = %q", userPath)
	}
	cfg, err := Load(userPath)
	if err != nil || cfg.App.Port != 8000 {
		t.Fatalf("seeded config = %+v (%v)", cfg, err)
	}

	// Second call must not clobber user edits.
	if err := os.WriteFile(userPath, []byte("app:\n  port: 9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureUserConfig(dataDir, defaultPath); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	cfg, _ = Load(userPath)
	if cfg.App.Port != 9999 {
		t.Fatal("user config was overwritten")
	}
}
