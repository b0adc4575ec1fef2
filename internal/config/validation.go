package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/modu-ai/rulesync/pkg/models"
)

// Dynamic token patterns that must not appear in configuration values.
// These indicate unexpanded template or shell variables.
var dynamicTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[^}]+\}`),        // ${VAR}
	regexp.MustCompile(`\{\{[^}]+\}\}`),      // {{VAR}}
	regexp.MustCompile(`\$[A-Z_][A-Z0-9_]*`), // $VAR
}

var (
	validLogLevels  = []string{"error", "warn", "warning", "info", "debug"}
	validLogFormats = []string{"text", "json", "logfmt"}
)

// Validate checks the configuration for correctness.
func Validate(cfg *Config) error {
	var errs []ValidationError

	errs = append(errs, validateRepositories(cfg.Repositories)...)
	errs = append(errs, validateInstallConfig(&cfg.Install)...)
	errs = append(errs, validateSystemConfig(&cfg.System)...)

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// validateRepositories checks each descriptor and URL uniqueness.
func validateRepositories(list []models.RepositoryDescriptor) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int, len(list))

	for i, d := range list {
		field := fmt.Sprintf("repositories[%d]", i)

		if strings.TrimSpace(d.URL) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".url",
				Message: "required field is empty",
				Wrapped: ErrInvalidConfig,
			})
		} else if first, dup := seen[d.URL]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".url",
				Message: fmt.Sprintf("already used by repositories[%d]", first),
				Value:   d.URL,
				Wrapped: ErrDuplicateRepository,
			})
		} else {
			seen[d.URL] = i
		}

		if strings.TrimSpace(d.Branch) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".branch",
				Message: "required field is empty",
				Wrapped: ErrInvalidConfig,
			})
		}

		if msg := checkRelativePath(d.RulesDir); msg != "" {
			errs = append(errs, ValidationError{
				Field:   field + ".rules_dir",
				Message: msg,
				Value:   d.RulesDir,
				Wrapped: ErrInvalidConfig,
			})
		}

		errs = append(errs, checkStringField(field+".url", d.URL)...)
		errs = append(errs, checkStringField(field+".branch", d.Branch)...)
		errs = append(errs, checkStringField(field+".rules_dir", d.RulesDir)...)
	}

	return errs
}

// validateInstallConfig checks the install destination. An empty
// destination is accepted here and reported as ErrNoDestination by the
// operation that needs it.
func validateInstallConfig(c *InstallConfig) []ValidationError {
	return checkStringField("install.local_rules_dir", c.LocalRulesDir)
}

// validateSystemConfig checks logging and git settings.
func validateSystemConfig(s *SystemConfig) []ValidationError {
	var errs []ValidationError

	if s.LogLevel != "" && !containsFold(validLogLevels, s.LogLevel) {
		errs = append(errs, ValidationError{
			Field:   "system.log_level",
			Message: "must be one of: " + strings.Join(validLogLevels, ", "),
			Value:   s.LogLevel,
			Wrapped: ErrInvalidConfig,
		})
	}

	if s.LogFormat != "" && !containsFold(validLogFormats, s.LogFormat) {
		errs = append(errs, ValidationError{
			Field:   "system.log_format",
			Message: "must be one of: " + strings.Join(validLogFormats, ", "),
			Value:   s.LogFormat,
			Wrapped: ErrInvalidConfig,
		})
	}

	if s.GitTimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "system.git_timeout_seconds",
			Message: "must be positive",
			Value:   s.GitTimeoutSeconds,
			Wrapped: ErrInvalidConfig,
		})
	}

	if s.GitRetries < 0 || s.GitRetries > MaxGitRetries {
		errs = append(errs, ValidationError{
			Field:   "system.git_retries",
			Message: fmt.Sprintf("must be between 0 and %d", MaxGitRetries),
			Value:   s.GitRetries,
			Wrapped: ErrInvalidConfig,
		})
	}

	errs = append(errs, checkStringField("system.repos_dir", s.ReposDir)...)
	return errs
}

// checkRelativePath returns a message when p is not a path that stays
// inside the repository root.
func checkRelativePath(p string) string {
	if strings.TrimSpace(p) == "" {
		return "required field is empty"
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return "must be relative to the repository root"
	}
	cleaned := filepath.Clean(filepath.FromSlash(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "must not escape the repository root"
	}
	return ""
}

// checkStringField checks a single string field for dynamic token patterns.
func checkStringField(field, value string) []ValidationError {
	if value == "" {
		return nil
	}
	for _, pattern := range dynamicTokenPatterns {
		if match := pattern.FindString(value); match != "" {
			return []ValidationError{
				{
					Field:   field,
					Message: fmt.Sprintf("contains unexpanded dynamic token: %s", match),
					Value:   value,
					Wrapped: ErrDynamicToken,
				},
			}
		}
	}
	return nil
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
