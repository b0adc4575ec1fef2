package config

import (
	"errors"
	"testing"

	"github.com/modu-ai/rulesync/pkg/models"
)

func findField(ve *ValidationErrors, field string) bool {
	for _, e := range ve.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateValidConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Repositories = []models.RepositoryDescriptor{
		models.NewRepositoryDescriptor("https://example.com/a.git"),
		models.NewRepositoryDescriptor("https://example.com/b.git"),
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() expected no error for valid config, got: %v", err)
	}
}

func TestValidateRepositories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		repo    models.RepositoryDescriptor
		field   string
		wrapped error
	}{
		{
			name:    "empty url",
			repo:    models.NewRepositoryDescriptor(""),
			field:   "repositories[0].url",
			wrapped: ErrInvalidConfig,
		},
		{
			name:    "empty branch",
			repo:    models.RepositoryDescriptor{URL: "u", Branch: " ", RulesDir: "rules"},
			field:   "repositories[0].branch",
			wrapped: ErrInvalidConfig,
		},
		{
			name:    "absolute rules dir",
			repo:    models.RepositoryDescriptor{URL: "u", Branch: "main", RulesDir: "/etc"},
			field:   "repositories[0].rules_dir",
			wrapped: ErrInvalidConfig,
		},
		{
			name:    "escaping rules dir",
			repo:    models.RepositoryDescriptor{URL: "u", Branch: "main", RulesDir: "../other"},
			field:   "repositories[0].rules_dir",
			wrapped: ErrInvalidConfig,
		},
		{
			name:    "dynamic token in url",
			repo:    models.NewRepositoryDescriptor("https://${HOST}/rules.git"),
			field:   "repositories[0].url",
			wrapped: ErrDynamicToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewDefaultConfig()
			cfg.Repositories = []models.RepositoryDescriptor{tt.repo}

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			var ve *ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationErrors, got %T", err)
			}
			if !findField(ve, tt.field) {
				t.Errorf("expected validation error for field %s, got %v", tt.field, err)
			}
			if !errors.Is(err, tt.wrapped) {
				t.Errorf("errors.Is(err, %v) = false", tt.wrapped)
			}
		})
	}
}

func TestValidateNestedRulesDirAllowed(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Repositories = []models.RepositoryDescriptor{
		{URL: "u", Enabled: true, Branch: "main", RulesDir: "a/../b/rules"},
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidateDuplicateURL(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Repositories = []models.RepositoryDescriptor{
		models.NewRepositoryDescriptor("u"),
		models.NewRepositoryDescriptor("v"),
		models.NewRepositoryDescriptor("u"),
	}

	err := Validate(cfg)
	if !errors.Is(err, ErrDuplicateRepository) {
		t.Fatalf("error = %v, want ErrDuplicateRepository", err)
	}
	var ve *ValidationErrors
	if errors.As(err, &ve) && !findField(ve, "repositories[2].url") {
		t.Errorf("expected the second occurrence to be reported, got %v", err)
	}
}

func TestValidateSystemConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*SystemConfig)
		field  string
	}{
		{"bad log level", func(s *SystemConfig) { s.LogLevel = "verbose" }, "system.log_level"},
		{"bad log format", func(s *SystemConfig) { s.LogFormat = "xml" }, "system.log_format"},
		{"zero timeout", func(s *SystemConfig) { s.GitTimeoutSeconds = 0 }, "system.git_timeout_seconds"},
		{"negative retries", func(s *SystemConfig) { s.GitRetries = -1 }, "system.git_retries"},
		{"too many retries", func(s *SystemConfig) { s.GitRetries = MaxGitRetries + 1 }, "system.git_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			tt.mutate(&cfg.System)

			var ve *ValidationErrors
			if err := Validate(cfg); !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationErrors, got %v", err)
			}
			if !findField(ve, tt.field) {
				t.Errorf("expected validation error for %s", tt.field)
			}
		})
	}
}

func TestValidateLogLevelCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.System.LogLevel = "DEBUG"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidationErrorsIs(t *testing.T) {
	t.Parallel()

	ve := &ValidationErrors{Errors: []ValidationError{
		{Field: "x", Message: "bad", Wrapped: ErrDynamicToken},
	}}

	if !errors.Is(ve, ErrInvalidConfig) {
		t.Error("ValidationErrors should always match ErrInvalidConfig")
	}
	if !errors.Is(ve, ErrDynamicToken) {
		t.Error("ValidationErrors should match contained sentinel")
	}
	if errors.Is(ve, ErrNoWorkspace) {
		t.Error("ValidationErrors should not match unrelated sentinel")
	}
}
