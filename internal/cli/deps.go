// Package cli provides the Cobra command tree and dependency injection
// wiring for the rulesync CLI. This file defines the Dependencies struct
// (Composition Root) that wires all domain modules together.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modu-ai/rulesync/internal/config"
	"github.com/modu-ai/rulesync/internal/core/git"
	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/internal/core/rules"
	"github.com/modu-ai/rulesync/internal/ui"
	"github.com/modu-ai/rulesync/pkg/models"
)

// Dependencies holds all domain-level services used by CLI commands.
// This is the Composition Root: the only place where concrete types
// are instantiated and wired together. Services that need the loaded
// configuration are built on demand by the factory methods below.
type Dependencies struct {
	Config   *config.ConfigManager
	VCS      git.Client
	Headless *ui.HeadlessManager
	Theme    *ui.Theme
	Logger   *slog.Logger
}

// deps is the global dependencies instance, initialized by InitDependencies.
var deps *Dependencies

// @MX:ANCHOR: [AUTO] InitDependencies is the Composition Root that wires all domain modules
// @MX:REASON: [AUTO] every command reaches configuration, git and the ui through the instance it creates
// InitDependencies creates the dependencies that do not need a workspace.
// The git client is created once the configuration is loaded, because its
// timeout comes from system.yaml.
func InitDependencies() {
	deps = &Dependencies{
		Config:   config.NewConfigManager(),
		Headless: ui.NewHeadlessManager(),
		Theme:    ui.NewTheme(ui.ThemeConfig{}),
		Logger:   slog.Default(),
	}
}

// GetDeps returns the current Dependencies instance.
// Returns nil if InitDependencies has not been called.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// EnsureVCS lazily creates the git client from the loaded configuration:
// the per-command timeout and the network retry count.
func (d *Dependencies) EnsureVCS() {
	if d.VCS != nil {
		return
	}
	timeout, retries := git.DefaultTimeout, config.DefaultGitRetries
	if cfg := d.Config.Get(); cfg != nil {
		if cfg.System.GitTimeoutSeconds > 0 {
			timeout = time.Duration(cfg.System.GitTimeoutSeconds) * time.Second
		}
		retries = cfg.System.GitRetries
	}
	d.VCS = git.NewClient(timeout, git.WithRetries(retries))
}

// ReposDir returns the directory that holds working copies. A relative
// repos_dir is resolved against the workspace root and "~/" against the
// user's home directory.
func (d *Dependencies) ReposDir() (string, error) {
	cfg := d.Config.Get()
	if cfg == nil {
		return "", config.ErrNotInitialized
	}

	dir := cfg.System.ReposDir
	if dir == "" {
		dir = config.DefaultReposDir()
	}
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, rest)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(d.Config.Root(), dir)
	}
	return filepath.Clean(dir), nil
}

// Synchronizer returns a Synchronizer over the configured working-copy root.
func (d *Dependencies) Synchronizer(n models.Notifier) (*repository.Synchronizer, error) {
	root, err := d.ReposDir()
	if err != nil {
		return nil, err
	}
	d.EnsureVCS()
	return repository.NewSynchronizer(d.VCS, root, n), nil
}

// Aggregator returns a rule Aggregator over the configured working-copy root.
func (d *Dependencies) Aggregator() (*rules.Aggregator, error) {
	root, err := d.ReposDir()
	if err != nil {
		return nil, err
	}
	return rules.NewAggregator(root), nil
}

// Installer returns a rule Installer reporting to n.
func (d *Dependencies) Installer(n models.Notifier) *rules.Installer {
	return rules.NewInstaller(n)
}
