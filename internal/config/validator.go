package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "run.max_rounds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidTiers returns the list of valid planning/review quality tiers
func ValidTiers() []string {
	return []string{"pro", "flash"}
}

// Validate checks the Config for invalid values.
func Validate(c *Config) error {
	var errs ValidationErrors

	if c.Run.MaxRounds < 1 {
		errs = append(errs, ValidationError{
			Field: "run.max_rounds", Value: c.Run.MaxRounds,
			Message: "must be at least 1",
		})
	}
	if c.Run.ProgressIntervalSeconds < 1 {
		errs = append(errs, ValidationError{
			Field: "run.progress_interval_seconds", Value: c.Run.ProgressIntervalSeconds,
			Message: "must be at least 1",
		})
	}
	if c.Run.WaitPromptSeconds < 1 {
		errs = append(errs, ValidationError{
			Field: "run.wait_prompt_seconds", Value: c.Run.WaitPromptSeconds,
			Message: "must be at least 1",
		})
	}

	if c.Backends.Codex.Command == "" {
		errs = append(errs, ValidationError{
			Field: "backends.codex.command", Value: c.Backends.Codex.Command,
			Message: "must not be empty",
		})
	}
	if c.Backends.Gemini.Command == "" {
		errs = append(errs, ValidationError{
			Field: "backends.gemini.command", Value: c.Backends.Gemini.Command,
			Message: "must not be empty",
		})
	}
	for field, secs := range map[string]int{
		"backends.codex.timeout_seconds":  c.Backends.Codex.TimeoutSeconds,
		"backends.gemini.timeout_seconds": c.Backends.Gemini.TimeoutSeconds,
		"backends.api.timeout_seconds":    c.Backends.API.TimeoutSeconds,
	} {
		if secs < 1 {
			errs = append(errs, ValidationError{
				Field: field, Value: secs,
				Message: "must be at least 1",
			})
		}
	}
	if c.Backends.API.Attempts < 1 {
		errs = append(errs, ValidationError{
			Field: "backends.api.attempts", Value: c.Backends.API.Attempts,
			Message: "must be at least 1",
		})
	}
	if c.Backends.API.BackoffSeconds < 0 {
		errs = append(errs, ValidationError{
			Field: "backends.api.backoff_seconds", Value: c.Backends.API.BackoffSeconds,
			Message: "must not be negative",
		})
	}

	if c.Review.QuestionTimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field: "review.question_timeout_seconds", Value: c.Review.QuestionTimeoutSeconds,
			Message: "must be at least 1",
		})
	}
	if c.Review.HoldTimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field: "review.hold_timeout_seconds", Value: c.Review.HoldTimeoutSeconds,
			Message: "must be at least 1",
		})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field: "logging.level", Value: c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Paths.StateDir == "" {
		errs = append(errs, ValidationError{
			Field: "paths.state_dir", Value: c.Paths.StateDir,
			Message: "must not be empty",
		})
	}
	if c.Paths.ArtifactsDir == "" {
		errs = append(errs, ValidationError{
			Field: "paths.artifacts_dir", Value: c.Paths.ArtifactsDir,
			Message: "must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
