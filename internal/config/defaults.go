package config

import (
	"os"
	"path/filepath"

	"github.com/modu-ai/rulesync/internal/defs"
	"github.com/modu-ai/rulesync/pkg/models"
)

// Default value constants to avoid magic numbers and strings.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultGitTimeoutSeconds = 120
	DefaultGitRetries        = 2
	MaxGitRetries            = 10
)

// NewDefaultConfig returns a Config with all fields set to compiled defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Repositories: []models.RepositoryDescriptor{},
		Install:      NewDefaultInstallConfig(),
		System:       NewDefaultSystemConfig(),
	}
}

// NewDefaultInstallConfig returns an InstallConfig with default values.
func NewDefaultInstallConfig() InstallConfig {
	return InstallConfig{
		LocalRulesDir: defs.DefaultLocalRulesDir,
	}
}

// NewDefaultSystemConfig returns a SystemConfig with default values.
func NewDefaultSystemConfig() SystemConfig {
	return SystemConfig{
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		ReposDir:          DefaultReposDir(),
		GitTimeoutSeconds: DefaultGitTimeoutSeconds,
		GitRetries:        DefaultGitRetries,
	}
}

// DefaultReposDir returns ~/.rulesync/repos, or a path under the system
// temp directory when the home directory cannot be resolved.
func DefaultReposDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), defs.RulesyncDir, defs.ReposSubdir)
	}
	return filepath.Join(home, defs.RulesyncDir, defs.ReposSubdir)
}
