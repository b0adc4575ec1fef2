package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/modu-ai/rulesync/pkg/models"
)

// Default keys read by RepositoryForm in headless mode.
const (
	DefaultKeyURL        = "url"
	DefaultKeyBranch     = "branch"
	DefaultKeyRulesDir   = "rules_dir"
	DefaultKeyAutoUpdate = "auto_update"
	DefaultKeyEnabled    = "enabled"
)

// RepositoryForm asks for the fields of a new repository descriptor.
type RepositoryForm struct {
	theme    *Theme
	headless *HeadlessManager
}

// NewRepositoryForm creates a RepositoryForm.
func NewRepositoryForm(theme *Theme, hm *HeadlessManager) *RepositoryForm {
	return &RepositoryForm{theme: theme, headless: hm}
}

// Run collects a repository descriptor. In headless mode the descriptor is
// built from the manager's defaults and a url default is required.
func (f *RepositoryForm) Run(ctx context.Context) (models.RepositoryDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return models.RepositoryDescriptor{}, err
	}
	if f.headless.IsHeadless() {
		return f.runHeadless()
	}
	return f.runInteractive(ctx)
}

func (f *RepositoryForm) runHeadless() (models.RepositoryDescriptor, error) {
	url, ok := f.headless.GetDefault(DefaultKeyURL)
	if !ok || strings.TrimSpace(url) == "" {
		return models.RepositoryDescriptor{}, ErrHeadlessNoDefaults
	}

	d := models.NewRepositoryDescriptor(strings.TrimSpace(url))
	if v, ok := f.headless.GetDefault(DefaultKeyBranch); ok && v != "" {
		d.Branch = v
	}
	if v, ok := f.headless.GetDefault(DefaultKeyRulesDir); ok && v != "" {
		d.RulesDir = v
	}
	if v, ok := f.headless.GetDefault(DefaultKeyAutoUpdate); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return models.RepositoryDescriptor{}, fmt.Errorf("default %s: %w", DefaultKeyAutoUpdate, err)
		}
		d.AutoUpdate = b
	}
	if v, ok := f.headless.GetDefault(DefaultKeyEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return models.RepositoryDescriptor{}, fmt.Errorf("default %s: %w", DefaultKeyEnabled, err)
		}
		d.Enabled = b
	}
	return d, nil
}

// runInteractive asks one question per form; multi-group huh forms misplace
// the viewport on some terminals.
func (f *RepositoryForm) runInteractive(ctx context.Context) (models.RepositoryDescriptor, error) {
	d := models.NewRepositoryDescriptor("")

	fields := []huh.Field{
		huh.NewInput().
			Title("Repository URL").
			Placeholder("https://github.com/acme/cursor-rules.git").
			Validate(requireNonEmpty("url")).
			Value(&d.URL),
		huh.NewInput().
			Title("Branch").
			Placeholder(models.DefaultBranch).
			Value(&d.Branch),
		huh.NewInput().
			Title("Rules directory").
			Description("Path inside the repository that holds *.mdc files").
			Placeholder(models.DefaultRulesDir).
			Value(&d.RulesDir),
		huh.NewConfirm().
			Title("Pull updates on every sync?").
			Value(&d.AutoUpdate),
	}

	for _, field := range fields {
		form := huh.NewForm(huh.NewGroup(field)).
			WithTheme(f.theme.huhTheme()).
			WithAccessible(false)
		if err := form.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return models.RepositoryDescriptor{}, ErrCancelled
			}
			return models.RepositoryDescriptor{}, fmt.Errorf("repository form: %w", err)
		}
	}

	d.URL = strings.TrimSpace(d.URL)
	if strings.TrimSpace(d.Branch) == "" {
		d.Branch = models.DefaultBranch
	}
	if strings.TrimSpace(d.RulesDir) == "" {
		d.RulesDir = models.DefaultRulesDir
	}
	return d, nil
}

func requireNonEmpty(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
