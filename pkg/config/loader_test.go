package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestInitialize_UsesBuiltinsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Initialize(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Queue.BatchSize != 200 {
		t.Errorf("got batch size %d, want builtin 200", cfg.Queue.BatchSize)
	}
	if len(cfg.PatternRules) == 0 {
		t.Error("expected builtin pattern rules when none configured")
	}
}

func TestInitialize_OverlaysUserYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
queue:
  batch_size: 50
  max_concurrency: 4
label:
  max_length: 80
pattern_rules:
  - code: custom_rule
    severity: LOW
    filter:
      semantic_contains: custom
`
	if err := os.WriteFile(filepath.Join(dir, "sessioncontext.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Initialize(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Queue.BatchSize != 50 {
		t.Errorf("got batch size %d, want 50", cfg.Queue.BatchSize)
	}
	if cfg.Queue.MaxConcurrency != 4 {
		t.Errorf("got max concurrency %d, want 4", cfg.Queue.MaxConcurrency)
	}
	if cfg.Label.MaxLength != 80 {
		t.Errorf("got label max length %d, want 80", cfg.Label.MaxLength)
	}
	if len(cfg.PatternRules) != 1 || cfg.PatternRules[0].Code != "custom_rule" {
		t.Errorf("got pattern rules %+v", cfg.PatternRules)
	}
}

func TestInitialize_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	yaml := "queue:\n  batch_size: -1\n"
	if err := os.WriteFile(filepath.Join(dir, "sessioncontext.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Initialize(context.Background(), dir); err == nil {
		t.Error("expected validation error for negative batch size")
	}
}
