package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/modu-ai/rulesync/internal/core/git"
	"github.com/modu-ai/rulesync/pkg/models"
)

// SyncFailure records a repository that could not be synchronized.
type SyncFailure struct {
	URL string
	Err error
}

// SyncReport accumulates the outcome of a Sync batch.
type SyncReport struct {
	Cloned  []string
	Updated []string
	// Skipped holds repositories with a working copy and auto-update off.
	Skipped []string
	Failed  []SyncFailure
}

// Succeeded returns the number of repositories cloned or updated.
func (r *SyncReport) Succeeded() int {
	return len(r.Cloned) + len(r.Updated)
}

// HasFailures reports whether any repository failed.
func (r *SyncReport) HasFailures() bool {
	return len(r.Failed) > 0
}

// Synchronizer clones and refreshes working copies under a root directory.
type Synchronizer struct {
	vcs      git.Client
	root     string
	notifier models.Notifier
	logger   *slog.Logger
}

// NewSynchronizer creates a Synchronizer that keeps working copies under root.
// A nil notifier discards events.
func NewSynchronizer(vcs git.Client, root string, notifier models.Notifier) *Synchronizer {
	if notifier == nil {
		notifier = models.NopNotifier
	}
	return &Synchronizer{
		vcs:      vcs,
		root:     root,
		notifier: notifier,
		logger:   slog.Default().With("module", "repository"),
	}
}

// Root returns the working-copy root directory.
func (s *Synchronizer) Root() string {
	return s.root
}

// @MX:ANCHOR: [AUTO] Sync is the batch entry point for `rulesync sync` and the sync step of install.
// @MX:REASON: [AUTO] per-repository failure isolation is enforced here; callers rely on it never aborting early
// Sync brings every enabled repository's working copy up to date, in list
// order. A missing working copy is cloned at the configured branch. An
// existing one is checked out and pulled when AutoUpdate is set and left
// untouched otherwise. Disabled repositories are ignored. A failure is
// notified and recorded, and the remaining repositories are still processed.
func (s *Synchronizer) Sync(ctx context.Context, list []models.RepositoryDescriptor) *SyncReport {
	report := &SyncReport{}

	for _, d := range list {
		if !d.Enabled {
			s.logger.Debug("repository disabled", "url", d.URL)
			continue
		}

		s.notifier.Notify(models.Event{Kind: models.EventSyncStarted, RepositoryURL: d.URL})
		dir := WorkingCopyPath(s.root, d.URL)

		switch {
		case !isWorkingCopy(dir):
			if err := s.clone(ctx, d, dir); err != nil {
				s.fail(report, d.URL, err)
				continue
			}
			report.Cloned = append(report.Cloned, d.URL)
			s.notifier.Notify(models.Event{Kind: models.EventCloned, RepositoryURL: d.URL})

		case d.AutoUpdate:
			if err := s.refresh(ctx, d, dir); err != nil {
				s.fail(report, d.URL, err)
				continue
			}
			report.Updated = append(report.Updated, d.URL)
			s.notifier.Notify(models.Event{Kind: models.EventUpdated, RepositoryURL: d.URL})

		default:
			s.logger.Debug("auto-update disabled, leaving working copy", "url", d.URL, "dir", dir)
			report.Skipped = append(report.Skipped, d.URL)
			s.notifier.Notify(models.Event{Kind: models.EventSkipped, RepositoryURL: d.URL})
		}
	}

	s.logger.Info("sync finished",
		"cloned", len(report.Cloned),
		"updated", len(report.Updated),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report
}

// Update refreshes a single repository regardless of its AutoUpdate and
// Enabled flags: the working copy is cloned when missing, otherwise the
// configured branch is checked out and pulled. The error is returned to the
// caller as well as notified.
func (s *Synchronizer) Update(ctx context.Context, d models.RepositoryDescriptor) error {
	s.notifier.Notify(models.Event{Kind: models.EventSyncStarted, RepositoryURL: d.URL})
	dir := WorkingCopyPath(s.root, d.URL)

	kind := models.EventUpdated
	var err error
	if isWorkingCopy(dir) {
		err = s.refresh(ctx, d, dir)
	} else {
		kind = models.EventCloned
		err = s.clone(ctx, d, dir)
	}
	if err != nil {
		s.notifier.Notify(models.Event{Kind: models.EventSyncFailed, RepositoryURL: d.URL, Err: err})
		return err
	}

	s.notifier.Notify(models.Event{Kind: kind, RepositoryURL: d.URL})
	return nil
}

// clone creates the working copy in dir. A directory left there without
// .git is the remains of an interrupted clone and is replaced; a failed
// clone removes whatever it wrote so the next run clones again.
func (s *Synchronizer) clone(ctx context.Context, d models.RepositoryDescriptor, dir string) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create working copy root %s: %w", s.root, err)
	}
	if _, err := os.Lstat(dir); err == nil {
		s.logger.Warn("removing incomplete working copy", "url", d.URL, "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove incomplete working copy %s: %w", dir, err)
		}
	}

	s.logger.Info("cloning repository", "url", d.URL, "branch", d.Branch, "dir", dir)
	if err := s.vcs.Clone(ctx, d.URL, dir, d.Branch); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("failed to remove partial clone", "dir", dir, "error", rmErr)
		}
		return err
	}
	return nil
}

func (s *Synchronizer) refresh(ctx context.Context, d models.RepositoryDescriptor, dir string) error {
	s.logger.Info("updating repository", "url", d.URL, "branch", d.Branch, "dir", dir)
	if err := s.vcs.Checkout(ctx, dir, d.Branch); err != nil {
		return err
	}
	return s.vcs.Pull(ctx, dir)
}

func (s *Synchronizer) fail(report *SyncReport, url string, err error) {
	s.logger.Warn("repository sync failed", "url", url, "error", err)
	report.Failed = append(report.Failed, SyncFailure{URL: url, Err: err})
	s.notifier.Notify(models.Event{Kind: models.EventSyncFailed, RepositoryURL: url, Err: err})
}

// isWorkingCopy reports whether dir holds a clone. .git may be a file when
// the working copy is a worktree.
func isWorkingCopy(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
