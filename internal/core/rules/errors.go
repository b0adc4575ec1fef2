// Package rules discovers rule files in working copies and installs them
// into a project's rules directory.
package rules

import (
	"errors"
	"fmt"
)

// Sentinel errors for rule discovery and installation.
var (
	// ErrRuleNotFound indicates a requested rule name was not discovered.
	ErrRuleNotFound = errors.New("rules: rule not found")

	// ErrSourceMissing indicates the rule's source file cannot be read,
	// usually because the working copy changed since aggregation.
	ErrSourceMissing = errors.New("rules: source file missing")

	// ErrDestinationUnwritable indicates the rules directory cannot be
	// created or written.
	ErrDestinationUnwritable = errors.New("rules: destination not writable")

	// ErrPathTraversal indicates a rule name would resolve outside the
	// destination directory.
	ErrPathTraversal = errors.New("rules: path traversal detected")
)

// InstallError reports a failed installation of one rule.
type InstallError struct {
	Rule string
	Err  error
}

// Error implements the error interface.
func (e *InstallError) Error() string {
	return fmt.Sprintf("install rule %q: %v", e.Rule, e.Err)
}

// Unwrap returns the underlying error.
func (e *InstallError) Unwrap() error {
	return e.Err
}
