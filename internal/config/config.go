package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete naoko configuration
type Config struct {
	Run      RunConfig      `mapstructure:"run"`
	Backends BackendsConfig `mapstructure:"backends"`
	Review   ReviewConfig   `mapstructure:"review"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Paths    PathsConfig    `mapstructure:"paths"`
}

// RunConfig controls orchestration behavior
type RunConfig struct {
	// MaxRounds is the review round budget (default: 5)
	MaxRounds int `mapstructure:"max_rounds"`
	// ProgressIntervalSeconds is how often the progress ticker reports while
	// a generation call blocks (default: 10)
	ProgressIntervalSeconds int `mapstructure:"progress_interval_seconds"`
	// WaitPromptSeconds bounds the "keep waiting?" prompt after a backend
	// timeout before its default applies (default: 30)
	WaitPromptSeconds int `mapstructure:"wait_prompt_seconds"`
}

// BackendsConfig configures the generation backend tiers
type BackendsConfig struct {
	Codex  CodexConfig  `mapstructure:"codex"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	API    APIConfig    `mapstructure:"api"`
}

// CodexConfig controls the primary implementer CLI backend
type CodexConfig struct {
	// Command is the CLI executable (default: "codex")
	Command string `mapstructure:"command"`
	// TimeoutSeconds is the per-invocation timeout (default: 300)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// AuthFile is the JSON credentials file for the hosted tier
	// (default: "~/.codex/auth.json")
	AuthFile string `mapstructure:"auth_file"`
}

// GeminiConfig controls the planner/reviewer CLI backend, which doubles as
// the implementer's fallback tier
type GeminiConfig struct {
	// Command is the CLI executable (default: "gemini")
	Command string `mapstructure:"command"`
	// ProModel is the high-quality model used when tier=pro (default: "gemini-2.5-pro")
	ProModel string `mapstructure:"pro_model"`
	// FlashModel is the fast model used when tier=flash (default: "gemini-2.5-flash")
	FlashModel string `mapstructure:"flash_model"`
	// TimeoutSeconds is the per-invocation timeout (default: 180)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// APIConfig controls the hosted-API backend tier
type APIConfig struct {
	// URL is the completions endpoint
	URL string `mapstructure:"url"`
	// Model is the hosted model identifier
	Model string `mapstructure:"model"`
	// Attempts is the retry budget for the hosted tier (default: 3)
	Attempts int `mapstructure:"attempts"`
	// BackoffSeconds is the pause between hosted attempts (default: 2)
	BackoffSeconds int `mapstructure:"backoff_seconds"`
	// TimeoutSeconds is the per-attempt timeout (default: 120)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ReviewConfig controls the review loop
type ReviewConfig struct {
	// QuestionTimeoutSeconds bounds the wait for an answer to a reviewer
	// question before its example answer applies (default: 60)
	QuestionTimeoutSeconds int `mapstructure:"question_timeout_seconds"`
	// HoldTimeoutSeconds bounds the wait on a HOLD confirmation (default: 120)
	HoldTimeoutSeconds int `mapstructure:"hold_timeout_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// PathsConfig controls where naoko stores data
type PathsConfig struct {
	// StateDir holds sessions and the generation error log.
	// Relative paths are resolved against the working tree root
	// (default: ".naoko")
	StateDir string `mapstructure:"state_dir"`
	// ArtifactsDir holds phase artifacts (default: "artifacts")
	ArtifactsDir string `mapstructure:"artifacts_dir"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			MaxRounds:               5,
			ProgressIntervalSeconds: 10,
			WaitPromptSeconds:       30,
		},
		Backends: BackendsConfig{
			Codex: CodexConfig{
				Command:        "codex",
				TimeoutSeconds: 300,
				AuthFile:       "~/.codex/auth.json",
			},
			Gemini: GeminiConfig{
				Command:        "gemini",
				ProModel:       "gemini-2.5-pro",
				FlashModel:     "gemini-2.5-flash",
				TimeoutSeconds: 180,
			},
			API: APIConfig{
				URL:            "https://api.openai.com/v1/chat/completions",
				Model:          "gpt-5-codex",
				Attempts:       3,
				BackoffSeconds: 2,
				TimeoutSeconds: 120,
			},
		},
		Review: ReviewConfig{
			QuestionTimeoutSeconds: 60,
			HoldTimeoutSeconds:     120,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Paths: PathsConfig{
			StateDir:     ".naoko",
			ArtifactsDir: "artifacts",
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	d := Default()

	viper.SetDefault("run.max_rounds", d.Run.MaxRounds)
	viper.SetDefault("run.progress_interval_seconds", d.Run.ProgressIntervalSeconds)
	viper.SetDefault("run.wait_prompt_seconds", d.Run.WaitPromptSeconds)

	viper.SetDefault("backends.codex.command", d.Backends.Codex.Command)
	viper.SetDefault("backends.codex.timeout_seconds", d.Backends.Codex.TimeoutSeconds)
	viper.SetDefault("backends.codex.auth_file", d.Backends.Codex.AuthFile)
	viper.SetDefault("backends.gemini.command", d.Backends.Gemini.Command)
	viper.SetDefault("backends.gemini.pro_model", d.Backends.Gemini.ProModel)
	viper.SetDefault("backends.gemini.flash_model", d.Backends.Gemini.FlashModel)
	viper.SetDefault("backends.gemini.timeout_seconds", d.Backends.Gemini.TimeoutSeconds)
	viper.SetDefault("backends.api.url", d.Backends.API.URL)
	viper.SetDefault("backends.api.model", d.Backends.API.Model)
	viper.SetDefault("backends.api.attempts", d.Backends.API.Attempts)
	viper.SetDefault("backends.api.backoff_seconds", d.Backends.API.BackoffSeconds)
	viper.SetDefault("backends.api.timeout_seconds", d.Backends.API.TimeoutSeconds)

	viper.SetDefault("review.question_timeout_seconds", d.Review.QuestionTimeoutSeconds)
	viper.SetDefault("review.hold_timeout_seconds", d.Review.HoldTimeoutSeconds)

	viper.SetDefault("logging.enabled", d.Logging.Enabled)
	viper.SetDefault("logging.level", d.Logging.Level)

	viper.SetDefault("paths.state_dir", d.Paths.StateDir)
	viper.SetDefault("paths.artifacts_dir", d.Paths.ArtifactsDir)
}

// Load reads the configuration from viper into a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigDir returns the naoko config directory, honoring XDG conventions.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "naoko")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".naoko"
	}
	return filepath.Join(home, ".config", "naoko")
}

// ExpandHome resolves a leading ~ in a path against the user home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// ProgressInterval returns the progress ticker interval as a duration.
func (r *RunConfig) ProgressInterval() time.Duration {
	return time.Duration(r.ProgressIntervalSeconds) * time.Second
}

// WaitPromptTimeout returns the keep-waiting prompt bound as a duration.
func (r *RunConfig) WaitPromptTimeout() time.Duration {
	return time.Duration(r.WaitPromptSeconds) * time.Second
}

// Timeout returns the codex CLI timeout as a duration.
func (c *CodexConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the gemini CLI timeout as a duration.
func (g *GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Timeout returns the hosted-API per-attempt timeout as a duration.
func (a *APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Backoff returns the hosted-API retry backoff as a duration.
func (a *APIConfig) Backoff() time.Duration {
	return time.Duration(a.BackoffSeconds) * time.Second
}

// QuestionTimeout returns the reviewer-question wait bound as a duration.
func (r *ReviewConfig) QuestionTimeout() time.Duration {
	return time.Duration(r.QuestionTimeoutSeconds) * time.Second
}

// HoldTimeout returns the HOLD confirmation wait bound as a duration.
func (r *ReviewConfig) HoldTimeout() time.Duration {
	return time.Duration(r.HoldTimeoutSeconds) * time.Second
}
