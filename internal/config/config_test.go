package config

import (
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Run.MaxRounds != 5 {
		t.Errorf("MaxRounds = %d, want 5", cfg.Run.MaxRounds)
	}
	if cfg.Backends.Codex.Command != "codex" {
		t.Errorf("Codex.Command = %q, want %q", cfg.Backends.Codex.Command, "codex")
	}
	if cfg.Backends.Gemini.ProModel == cfg.Backends.Gemini.FlashModel {
		t.Error("pro and flash models must differ")
	}
	if cfg.Paths.StateDir != ".naoko" {
		t.Errorf("StateDir = %q, want %q", cfg.Paths.StateDir, ".naoko")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max rounds", func(c *Config) { c.Run.MaxRounds = 0 }},
		{"empty codex command", func(c *Config) { c.Backends.Codex.Command = "" }},
		{"empty gemini command", func(c *Config) { c.Backends.Gemini.Command = "" }},
		{"zero api attempts", func(c *Config) { c.Backends.API.Attempts = 0 }},
		{"negative backoff", func(c *Config) { c.Backends.API.BackoffSeconds = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"empty state dir", func(c *Config) { c.Paths.StateDir = "" }},
		{"zero hold timeout", func(c *Config) { c.Review.HoldTimeoutSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Run.MaxRounds = 0
	cfg.Backends.Codex.Command = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("got %d errors, want 2", len(errs))
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	if got := cfg.Run.ProgressInterval(); got != 10*time.Second {
		t.Errorf("ProgressInterval = %v, want 10s", got)
	}
	if got := cfg.Backends.Codex.Timeout(); got != 300*time.Second {
		t.Errorf("Codex.Timeout = %v, want 300s", got)
	}
	if got := cfg.Backends.API.Backoff(); got != 2*time.Second {
		t.Errorf("API.Backoff = %v, want 2s", got)
	}
	if got := cfg.Review.QuestionTimeout(); got != 60*time.Second {
		t.Errorf("QuestionTimeout = %v, want 60s", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	if got := ExpandHome("~/auth.json"); got != "/home/tester/auth.json" {
		t.Errorf("ExpandHome(~/auth.json) = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome should leave absolute paths alone, got %q", got)
	}
}
