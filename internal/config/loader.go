package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/modu-ai/rulesync/internal/defs"
)

// Loader reads configuration from YAML section files. It holds no state
// and is safe for concurrent use.
type Loader struct{}

// NewLoader creates a new Loader instance.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads all configuration section files from the given .rulesync
// directory and returns a merged Config with defaults applied for missing
// fields. Missing files use default values. An unreadable install or system
// section is skipped with a warning; an unreadable repositories section is
// an error, because saving over it later would discard the user's list.
func (l *Loader) Load(configDir string) (*Config, error) {
	cfg := NewDefaultConfig()

	sectionsDir := filepath.Join(filepath.Clean(configDir), filepath.FromSlash(defs.SectionsSubdir))

	if _, err := os.Stat(sectionsDir); os.IsNotExist(err) {
		slog.Debug("config sections directory not found, using defaults", "path", sectionsDir)
		return cfg, nil
	}

	if err := l.loadRepositoriesSection(sectionsDir, cfg); err != nil {
		return nil, err
	}
	l.loadInstallSection(sectionsDir, cfg)
	l.loadSystemSection(sectionsDir, cfg)

	return cfg, nil
}

// loadRepositoriesSection loads the repository list from repositories.yaml.
func (l *Loader) loadRepositoriesSection(dir string, cfg *Config) error {
	wrapper := &repositoriesFileWrapper{}
	loaded, err := loadYAMLFile(dir, defs.RepositoriesYAML, wrapper)
	if err != nil {
		return fmt.Errorf("load repositories config: %w", err)
	}
	if loaded {
		if wrapper.Repositories != nil {
			cfg.Repositories = wrapper.Repositories
		}
	}
	return nil
}

// loadInstallSection loads the install configuration section from install.yaml.
func (l *Loader) loadInstallSection(dir string, cfg *Config) {
	wrapper := &installFileWrapper{Install: cfg.Install}
	loaded, err := loadYAMLFile(dir, defs.InstallYAML, wrapper)
	if err != nil {
		slog.Warn("failed to load install config, using defaults", "error", err)
		return
	}
	if loaded {
		cfg.Install = wrapper.Install
	}
}

// loadSystemSection loads the system configuration section from system.yaml.
func (l *Loader) loadSystemSection(dir string, cfg *Config) {
	wrapper := &systemFileWrapper{System: cfg.System}
	loaded, err := loadYAMLFile(dir, defs.SystemYAML, wrapper)
	if err != nil {
		slog.Warn("failed to load system config, using defaults", "error", err)
		return
	}
	if loaded {
		cfg.System = wrapper.System
	}
}

// loadYAMLFile reads a YAML file from the given directory and unmarshals it
// into the target struct. Returns (true, nil) if the file was found and parsed,
// (false, nil) if the file does not exist, or (false, error) on failure.
func loadYAMLFile(dir, filename string, target any) (bool, error) {
	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("parse %s: %w: %v", filename, ErrInvalidYAML, err)
	}

	return true, nil
}
