package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes to dir for the duration of the test, mirroring t.Chdir,
// which is unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("api key = %q, want empty", cfg.LLM.APIKey)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.LLM.Timeout)
	}
	if cfg.Recalc.Schedule != "0 3 * * *" {
		t.Errorf("schedule = %q", cfg.Recalc.Schedule)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := []byte("port: 9090\nllm:\n  model: gpt-4o\nrecalc:\n  schedule: \"\"\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", cfg.LLM.Model)
	}
	// File values not set keep their defaults.
	if cfg.DatabaseURL == "" {
		t.Error("database url default lost")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "7070")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("RECALC_SCHEDULE", "*/30 * * * *")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Port)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Recalc.Schedule != "*/30 * * * *" {
		t.Errorf("schedule = %q", cfg.Recalc.Schedule)
	}
}
