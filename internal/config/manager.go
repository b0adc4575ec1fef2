package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/modu-ai/rulesync/internal/defs"
	"github.com/modu-ai/rulesync/pkg/models"
)

// managerState represents the lifecycle state of the ConfigManager.
type managerState int

const (
	stateUninitialized managerState = iota
	stateInitialized
)

// @MX:ANCHOR: [AUTO] ConfigManager is the single entry point for reading and writing rulesync settings.
// @MX:REASON: [AUTO] every command reads repositories and the install destination through it
// ConfigManager provides thread-safe configuration management.
// It must be initialized via Load() before use.
//
// Writes replace one section file with the values the caller passed, so
// environment overrides never reach disk. Read-modify-write sequences such
// as adding a repository are not guarded against concurrent writers; the
// last write wins.
type ConfigManager struct {
	mu     sync.RWMutex
	config *Config
	root   string
	state  managerState
	loader *Loader
}

// NewConfigManager creates a new ConfigManager instance in uninitialized state.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		loader: NewLoader(),
		state:  stateUninitialized,
	}
}

// Load reads configuration from the workspace root's .rulesync/ directory.
// It merges file values with compiled defaults and applies environment
// variable overrides. The configuration is validated before being stored.
func (m *ConfigManager) Load(workspaceRoot string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if workspaceRoot == "" {
		return nil, ErrNoWorkspace
	}

	cfg, err := m.loadLocked(workspaceRoot)
	if err != nil {
		return nil, err
	}

	m.config = cfg
	m.root = filepath.Clean(workspaceRoot)
	m.state = stateInitialized

	return cfg, nil
}

// Get returns a copy of the current in-memory configuration.
// Returns nil if the manager has not been initialized via Load().
func (m *ConfigManager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return nil
	}
	cp := *m.config
	cp.Repositories = slices.Clone(m.config.Repositories)
	return &cp
}

// Root returns the workspace root passed to Load.
func (m *ConfigManager) Root() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// Repositories returns a copy of the configured repository list.
func (m *ConfigManager) Repositories() ([]models.RepositoryDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == stateUninitialized {
		return nil, ErrNotInitialized
	}
	return slices.Clone(m.config.Repositories), nil
}

// SetRepositories validates and replaces the whole repository list, then
// persists repositories.yaml. Merging by URL is the caller's job.
func (m *ConfigManager) SetRepositories(list []models.RepositoryDescriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	next := slices.Clone(list)
	if next == nil {
		next = []models.RepositoryDescriptor{}
	}
	if errs := validateRepositories(next); len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}

	if err := m.saveSectionLocked(defs.RepositoriesYAML, repositoriesFileWrapper{Repositories: next}); err != nil {
		return fmt.Errorf("save repositories config: %w", err)
	}
	m.config.Repositories = next
	return nil
}

// LocalRulesDir returns the install destination resolved against the
// workspace root. Returns ErrNoDestination when it is not configured.
func (m *ConfigManager) LocalRulesDir() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == stateUninitialized {
		return "", ErrNotInitialized
	}
	dir := m.config.Install.LocalRulesDir
	if dir == "" {
		return "", ErrNoDestination
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	return filepath.Join(m.root, filepath.FromSlash(dir)), nil
}

// SetLocalRulesDir updates and persists the install destination.
func (m *ConfigManager) SetLocalRulesDir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	if strings.TrimSpace(dir) == "" {
		return ErrNoDestination
	}

	install := m.config.Install
	install.LocalRulesDir = dir
	if errs := validateInstallConfig(&install); len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}

	if err := m.saveSectionLocked(defs.InstallYAML, installFileWrapper{Install: install}); err != nil {
		return fmt.Errorf("save install config: %w", err)
	}
	m.config.Install = install
	return nil
}

// loadLocked reads, overrides and validates the configuration. Caller must hold Lock.
func (m *ConfigManager) loadLocked(root string) (*Config, error) {
	cfg, err := m.loader.Load(configDir(root))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyEnvOverrides(cfg)
	if cfg.System.ReposDir == "" {
		cfg.System.ReposDir = DefaultReposDir()
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// saveSectionLocked writes one section file under the sections directory.
// Caller must hold Lock.
func (m *ConfigManager) saveSectionLocked(filename string, data any) error {
	sectionsDir := filepath.Join(configDir(m.root), filepath.FromSlash(defs.SectionsSubdir))
	if err := os.MkdirAll(sectionsDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return saveSection(sectionsDir, filename, data)
}

// configDir returns the .rulesync directory for root, honouring
// RULESYNC_CONFIG_DIR.
func configDir(root string) string {
	if envDir := os.Getenv("RULESYNC_CONFIG_DIR"); envDir != "" {
		return filepath.Clean(envDir)
	}
	return filepath.Join(filepath.Clean(root), defs.RulesyncDir)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than file-based values.
func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("RULESYNC_REPOS_DIR"); dir != "" {
		cfg.System.ReposDir = dir
	}
	if level := os.Getenv("RULESYNC_LOG_LEVEL"); level != "" {
		cfg.System.LogLevel = level
	}
	if format := os.Getenv("RULESYNC_LOG_FORMAT"); format != "" {
		cfg.System.LogFormat = format
	}
	if noColor := os.Getenv("RULESYNC_NO_COLOR"); noColor != "" {
		if v, err := strconv.ParseBool(noColor); err == nil {
			cfg.System.NoColor = v
		}
	}
}

// saveSection marshals data to YAML and writes it atomically.
func saveSection(dir, filename string, data any) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}

	path := filepath.Join(dir, filename)
	return atomicWrite(path, yamlData)
}

// atomicWrite writes data to a file atomically using temp file + os.Rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".rulesync-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // cleanup on error path

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}
