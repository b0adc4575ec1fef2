package config

import (
	"slices"

	"github.com/modu-ai/rulesync/pkg/models"
)

// Config is the root configuration aggregate containing all sections.
type Config struct {
	Repositories []models.RepositoryDescriptor `yaml:"repositories"`
	Install      InstallConfig                 `yaml:"install"`
	System       SystemConfig                  `yaml:"system"`
}

// InstallConfig represents the install configuration section.
type InstallConfig struct {
	// LocalRulesDir is resolved against the workspace root unless absolute.
	LocalRulesDir string `yaml:"local_rules_dir"`
}

// SystemConfig represents the system configuration section.
type SystemConfig struct {
	LogLevel          string `yaml:"log_level"`
	LogFormat         string `yaml:"log_format"`
	NoColor           bool   `yaml:"no_color"`
	NonInteractive    bool   `yaml:"non_interactive"`
	ReposDir          string `yaml:"repos_dir"`
	GitTimeoutSeconds int    `yaml:"git_timeout_seconds"`
	// GitRetries is how often a clone or pull is retried after a
	// network failure.
	GitRetries int `yaml:"git_retries"`
}

// sectionNames lists all valid configuration section names.
var sectionNames = []string{"repositories", "install", "system"}

// IsValidSectionName checks if the given name is a valid section name.
func IsValidSectionName(name string) bool {
	return slices.Contains(sectionNames, name)
}

// ValidSectionNames returns all valid section names.
func ValidSectionNames() []string {
	result := make([]string, len(sectionNames))
	copy(result, sectionNames)
	return result
}

// YAML file wrapper types for proper unmarshaling with top-level keys.
// Each section file wraps its content under a top-level key.

type repositoriesFileWrapper struct {
	Repositories []models.RepositoryDescriptor `yaml:"repositories"`
}

type installFileWrapper struct {
	Install InstallConfig `yaml:"install"`
}

type systemFileWrapper struct {
	System SystemConfig `yaml:"system"`
}
