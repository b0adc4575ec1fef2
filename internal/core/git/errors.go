// Package git wraps the system git binary for the clone, checkout and pull
// operations rulesync performs on repository working copies.
package git

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for git operations.
var (
	// ErrVCS matches every failure reported by a git operation.
	ErrVCS = errors.New("git: operation failed")

	// ErrSystemGitNotFound indicates the git binary is not on PATH.
	ErrSystemGitNotFound = errors.New("git: system git not found")

	// ErrDetachedHEAD indicates the working copy has no current branch.
	ErrDetachedHEAD = errors.New("git: HEAD is detached")

	// ErrInvalidBranchName indicates the branch name violates git ref rules.
	ErrInvalidBranchName = errors.New("git: invalid branch name")
)

// VCSError reports a failed git operation. Err carries git's stderr verbatim.
type VCSError struct {
	Op     string // clone, checkout, pull, branch
	Target string // remote URL for clone, working copy path otherwise
	Err    error
}

// Error implements the error interface.
func (e *VCSError) Error() string {
	return fmt.Sprintf("git %s %s: %v", e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *VCSError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrVCS.
func (e *VCSError) Is(target error) bool {
	return target == ErrVCS
}

// transientMarkers are fragments of git's stderr (LC_ALL=C) that point at
// network trouble rather than a wrong URL, branch or credential.
var transientMarkers = []string{
	"could not resolve host",
	"connection timed out",
	"connection reset",
	"connection refused",
	"operation timed out",
	"early eof",
	"rpc failed",
	"the remote end hung up unexpectedly",
	"unexpected disconnect",
	"temporary failure in name resolution",
}

// IsTransient reports whether err looks like a network failure that may
// succeed when retried.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrSystemGitNotFound) || errors.Is(err, ErrInvalidBranchName) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
