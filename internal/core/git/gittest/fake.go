// Package gittest provides an in-memory git.Client for tests.
package gittest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/modu-ai/rulesync/internal/core/git"
)

// Call records one invocation of the fake client.
type Call struct {
	Op     string // clone, checkout, pull, branch
	Target string // URL for clone, working copy path otherwise
	Branch string
}

// FakeClient implements git.Client without running git. Clone creates the
// destination directory with an empty .git directory and writes the files
// registered for the URL. A failing clone still leaves the destination
// behind, the way an interrupted git clone does.
type FakeClient struct {
	mu sync.Mutex

	// Files maps a remote URL to the files (relative path to content) a
	// clone of it produces.
	Files map[string]map[string]string

	// Errors maps a URL (clone) or working copy path (checkout, pull) to the
	// error the operation returns. The error is wrapped in *git.VCSError.
	Errors map[string]error

	calls    []Call
	branches map[string]string
}

var _ git.Client = (*FakeClient)(nil)

// NewFakeClient returns an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Files:    make(map[string]map[string]string),
		Errors:   make(map[string]error),
		branches: make(map[string]string),
	}
}

// AddFile registers a file that clones of url will contain.
func (f *FakeClient) AddFile(url, rel, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Files[url] == nil {
		f.Files[url] = make(map[string]string)
	}
	f.Files[url][rel] = content
}

// FailOn makes operations on target return err.
func (f *FakeClient) FailOn(target string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[target] = err
}

// Clone implements git.Client.
func (f *FakeClient) Clone(_ context.Context, url, dest, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "clone", Target: url, Branch: branch})

	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0o755); err != nil {
		return &git.VCSError{Op: "clone", Target: url, Err: err}
	}
	if err := f.Errors[url]; err != nil {
		return &git.VCSError{Op: "clone", Target: url, Err: err}
	}
	for rel, content := range f.Files[url] {
		p := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return &git.VCSError{Op: "clone", Target: url, Err: err}
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return &git.VCSError{Op: "clone", Target: url, Err: err}
		}
	}
	f.branches[dest] = branch
	return nil
}

// Checkout implements git.Client.
func (f *FakeClient) Checkout(_ context.Context, path, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "checkout", Target: path, Branch: branch})

	if err := f.Errors[path]; err != nil {
		return &git.VCSError{Op: "checkout", Target: path, Err: err}
	}
	f.branches[path] = branch
	return nil
}

// Pull implements git.Client.
func (f *FakeClient) Pull(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "pull", Target: path})

	if err := f.Errors[path]; err != nil {
		return &git.VCSError{Op: "pull", Target: path, Err: err}
	}
	return nil
}

// CurrentBranch implements git.Client. Working copies the fake did not
// create are reported on branch "main".
func (f *FakeClient) CurrentBranch(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "branch", Target: path})

	if _, err := os.Stat(path); err != nil {
		return "", &git.VCSError{Op: "branch", Target: path, Err: errors.Join(git.ErrDetachedHEAD, err)}
	}
	if b, ok := f.branches[path]; ok {
		return b, nil
	}
	return "main", nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many calls of op targeted target. An empty target
// counts every call of op.
func (f *FakeClient) Count(op, target string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op && (target == "" || c.Target == target) {
			n++
		}
	}
	return n
}
