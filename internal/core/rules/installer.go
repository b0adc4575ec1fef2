package rules

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modu-ai/rulesync/pkg/models"
)

// InstallFailure records a rule that could not be installed.
type InstallFailure struct {
	Rule models.RuleDescriptor
	Err  error
}

// InstallReport accumulates the outcome of a batch install.
type InstallReport struct {
	Succeeded []models.RuleDescriptor
	Failed    []InstallFailure
}

// SucceededCount returns the number of installed rules.
func (r *InstallReport) SucceededCount() int { return len(r.Succeeded) }

// FailedCount returns the number of rules that failed to install.
func (r *InstallReport) FailedCount() int { return len(r.Failed) }

// Installer copies rule files into a destination directory.
type Installer struct {
	notifier models.Notifier
	logger   *slog.Logger
}

// NewInstaller creates an Installer. A nil notifier discards events.
func NewInstaller(notifier models.Notifier) *Installer {
	if notifier == nil {
		notifier = models.NopNotifier
	}
	return &Installer{
		notifier: notifier,
		logger:   slog.Default().With("module", "rules"),
	}
}

// Install copies the rule's source file to dest/<name>.mdc, creating dest
// when needed. An existing file of the same name is replaced. The copy is
// written to a temporary file in dest and renamed into place, so a failed
// install never leaves a truncated rule behind.
func (i *Installer) Install(rule models.RuleDescriptor, dest string) error {
	if err := i.install(rule, dest); err != nil {
		ierr := &InstallError{Rule: rule.Name, Err: err}
		i.logger.Warn("rule install failed", "rule", rule.Name, "repository", rule.RepositoryURL, "error", err)
		i.notifier.Notify(models.Event{Kind: models.EventRuleFailed, RepositoryURL: rule.RepositoryURL, Rule: rule.Name, Err: ierr})
		return ierr
	}

	i.logger.Debug("rule installed", "rule", rule.Name, "dest", dest)
	i.notifier.Notify(models.Event{Kind: models.EventRuleInstalled, RepositoryURL: rule.RepositoryURL, Rule: rule.Name})
	return nil
}

// InstallAll installs every rule in order. A failure is recorded and the
// remaining rules are still installed.
func (i *Installer) InstallAll(rules []models.RuleDescriptor, dest string) *InstallReport {
	i.logger.Info("installing all rules", "count", len(rules), "dest", dest)
	return i.batch(rules, dest)
}

// InstallSelected installs a user-chosen subset with the same per-rule
// isolation as InstallAll.
func (i *Installer) InstallSelected(rules []models.RuleDescriptor, dest string) *InstallReport {
	i.logger.Info("installing selected rules", "count", len(rules), "dest", dest)
	return i.batch(rules, dest)
}

func (i *Installer) batch(rules []models.RuleDescriptor, dest string) *InstallReport {
	report := &InstallReport{}
	for _, r := range rules {
		if err := i.Install(r, dest); err != nil {
			report.Failed = append(report.Failed, InstallFailure{Rule: r, Err: err})
			continue
		}
		report.Succeeded = append(report.Succeeded, r)
	}
	return report
}

func (i *Installer) install(rule models.RuleDescriptor, dest string) error {
	target, err := targetPath(dest, rule.FileName())
	if err != nil {
		return err
	}

	src, err := os.Open(rule.SourcePath())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrSourceMissing, rule.SourcePath())
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrDestinationUnwritable, err)
	}

	if err := copyAtomic(src, target); err != nil {
		// Reading the source can still fail mid-copy.
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && pathErr.Path == rule.SourcePath() {
			return fmt.Errorf("%w: %w", ErrSourceMissing, err)
		}
		return fmt.Errorf("%w: %w", ErrDestinationUnwritable, err)
	}
	return nil
}

// copyAtomic writes r to target through a temp file in the same directory.
func copyAtomic(r io.Reader, target string) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".rulesync-rule-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// targetPath joins dest and fileName, rejecting names that leave dest.
func targetPath(dest, fileName string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(fileName))
	if filepath.IsAbs(cleaned) || cleaned != filepath.Base(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, fileName)
	}

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %s: %w", ErrDestinationUnwritable, dest, err)
	}
	target := filepath.Join(absDest, cleaned)
	if !strings.HasPrefix(target, absDest+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrPathTraversal, fileName, dest)
	}
	return target, nil
}
