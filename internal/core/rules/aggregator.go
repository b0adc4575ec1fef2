package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/pkg/models"
)

// Aggregator scans working copies for rule files.
type Aggregator struct {
	root   string
	logger *slog.Logger
}

// NewAggregator creates an Aggregator over the working copies under root.
func NewAggregator(root string) *Aggregator {
	return &Aggregator{
		root:   root,
		logger: slog.Default().With("module", "rules"),
	}
}

// @MX:ANCHOR: [AUTO] List is the single source of discovered rules for list, show and install.
// @MX:REASON: [AUTO] results are recomputed on every call; callers must not cache them across a sync
// List returns the rules exposed by every enabled repository, in repository
// order and then directory order. Only regular files directly inside the
// repository's rules directory whose name ends in the rule extension are
// included. A repository that is not cloned yet, or has no rules directory,
// contributes nothing. Directories that exist but cannot be read are
// reported in the returned error; rules from the other repositories are
// still returned.
func (a *Aggregator) List(list []models.RepositoryDescriptor) ([]models.RuleDescriptor, error) {
	var (
		rules []models.RuleDescriptor
		errs  []error
	)

	for _, d := range list {
		if !d.Enabled {
			continue
		}

		wc := repository.WorkingCopyPath(a.root, d.URL)
		dir := filepath.Join(wc, filepath.FromSlash(d.RulesDir))

		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || isNotDir(dir) {
				a.logMissing(d, wc, dir)
				continue
			}
			errs = append(errs, fmt.Errorf("read rules dir %s: %w", dir, err))
			continue
		}

		for _, e := range entries {
			name, ok := ruleName(dir, e)
			if !ok {
				continue
			}
			rules = append(rules, models.RuleDescriptor{
				Name:          name,
				RepositoryURL: d.URL,
				SourceDir:     dir,
			})
		}
	}

	a.logger.Debug("rules aggregated", "count", len(rules))
	return rules, errors.Join(errs...)
}

// logMissing tells an uncloned repository apart from a misconfigured
// rules_dir. Both are skipped.
func (a *Aggregator) logMissing(d models.RepositoryDescriptor, wc, dir string) {
	if _, err := os.Stat(wc); err != nil {
		a.logger.Debug("working copy not cloned, skipping", "url", d.URL, "path", wc)
		return
	}
	a.logger.Debug("rules dir missing in working copy, skipping", "url", d.URL, "rules_dir", d.RulesDir, "path", dir)
}

// ruleName returns the rule name for a directory entry, following symlinks
// to regular files.
func ruleName(dir string, e fs.DirEntry) (string, bool) {
	name, ok := strings.CutSuffix(e.Name(), models.RuleExtension)
	if !ok || name == "" {
		return "", false
	}
	if e.Type().IsRegular() {
		return name, true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return "", false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return name, true
}

func isNotDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Find returns the rules whose names match names. Names may carry the rule
// extension and are compared in Unicode NFC form, so a name typed on one
// platform matches a file name stored decomposed on another. A name that
// several repositories provide matches every one of them, in discovery
// order. Unknown names are reported together in an error wrapping
// ErrRuleNotFound.
func Find(rules []models.RuleDescriptor, names []string) ([]models.RuleDescriptor, error) {
	var (
		found   []models.RuleDescriptor
		missing []string
	)

	for _, n := range names {
		want := normalize(strings.TrimSuffix(n, models.RuleExtension))
		matched := false
		for _, r := range rules {
			if normalize(r.Name) == want {
				found = append(found, r)
				matched = true
			}
		}
		if !matched {
			missing = append(missing, n)
		}
	}

	if len(missing) > 0 {
		return found, fmt.Errorf("%w: %s", ErrRuleNotFound, strings.Join(missing, ", "))
	}
	return found, nil
}

func normalize(name string) string {
	return norm.NFC.String(name)
}
