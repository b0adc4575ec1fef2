package repository

import (
	"context"

	"github.com/modu-ai/rulesync/pkg/models"
)

// WorkingCopyStatus describes the local state of one configured repository.
type WorkingCopyStatus struct {
	URL     string
	Path    string
	Enabled bool
	Cloned  bool
	// Branch is the configured branch; CurrentBranch is the checked-out one.
	Branch        string
	CurrentBranch string
	Err           error
}

// BranchMismatch reports whether the working copy is on a branch other
// than the configured one. A branch change in the configuration only takes
// effect after an explicit update.
func (s WorkingCopyStatus) BranchMismatch() bool {
	return s.Cloned && s.Err == nil && s.CurrentBranch != s.Branch
}

// Status inspects the working copy of every configured repository, enabled
// or not. It performs no network operations.
func (s *Synchronizer) Status(ctx context.Context, list []models.RepositoryDescriptor) []WorkingCopyStatus {
	out := make([]WorkingCopyStatus, 0, len(list))
	for _, d := range list {
		st := WorkingCopyStatus{
			URL:     d.URL,
			Path:    WorkingCopyPath(s.root, d.URL),
			Enabled: d.Enabled,
			Branch:  d.Branch,
		}
		if isWorkingCopy(st.Path) {
			st.Cloned = true
			st.CurrentBranch, st.Err = s.vcs.CurrentBranch(ctx, st.Path)
		}
		out = append(out, st)
	}
	return out
}
