package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/modu-ai/rulesync/internal/resilience"
)

// DefaultTimeout bounds a single git invocation when no timeout is given.
const DefaultTimeout = 2 * time.Minute

// Compile-time interface compliance check.
var _ Client = (*systemClient)(nil)

// systemClient implements Client using the system git binary.
type systemClient struct {
	timeout time.Duration
	retry   resilience.RetryPolicy
	logger  *slog.Logger
}

// Option configures the client returned by NewClient.
type Option func(*systemClient)

// WithRetries retries clone and pull up to n times when git fails with a
// transient network error.
func WithRetries(n int) Option {
	return func(c *systemClient) {
		c.retry = resilience.DefaultPolicy(n)
		c.retry.Retryable = IsTransient
	}
}

// @MX:ANCHOR: [AUTO] NewClient is the only constructor for git access; synchronizer and status commands go through it.
// @MX:REASON: [AUTO] all network I/O of rulesync happens behind this client
// NewClient returns a Client that shells out to git. Each call is bounded
// by timeout; a non-positive timeout uses DefaultTimeout. Without
// WithRetries every command runs once.
func NewClient(timeout time.Duration, opts ...Option) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &systemClient{
		timeout: timeout,
		logger:  slog.Default().With("module", "git"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone clones url at branch into dest.
func (c *systemClient) Clone(ctx context.Context, url, dest, branch string) error {
	c.logger.Debug("cloning repository", "url", url, "dest", dest, "branch", branch)

	if err := validateBranchName(branch); err != nil {
		return &VCSError{Op: "clone", Target: url, Err: err}
	}

	// A killed attempt can leave dest behind, and git refuses to clone into
	// a non-empty directory, so each failed attempt clears it.
	err := c.withRetry(ctx, "clone", func(ctx context.Context) error {
		_, err := execGit(ctx, "", "clone", "--branch", branch, "--", url, dest)
		if err != nil {
			_ = os.RemoveAll(dest)
		}
		return err
	})
	if err != nil {
		return &VCSError{Op: "clone", Target: url, Err: err}
	}

	c.logger.Debug("repository cloned", "url", url, "dest", dest)
	return nil
}

// Checkout switches the working copy at path to branch.
func (c *systemClient) Checkout(ctx context.Context, path, branch string) error {
	c.logger.Debug("checking out branch", "path", path, "branch", branch)

	if err := validateBranchName(branch); err != nil {
		return &VCSError{Op: "checkout", Target: path, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if current, err := currentBranch(ctx, path); err == nil && current == branch {
		c.logger.Debug("branch already checked out", "path", path, "branch", branch)
		return nil
	}

	if branchExists(ctx, path, branch) {
		if _, err := execGit(ctx, path, "checkout", branch); err != nil {
			return &VCSError{Op: "checkout", Target: path, Err: err}
		}
		return nil
	}

	// The branch is new to this working copy: fetch it from origin and
	// create a local tracking branch.
	refspec := fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", branch, branch)
	if _, err := execGit(ctx, path, "fetch", "origin", refspec); err != nil {
		return &VCSError{Op: "checkout", Target: path, Err: err}
	}
	if _, err := execGit(ctx, path, "checkout", "-B", branch, "--track", "origin/"+branch); err != nil {
		return &VCSError{Op: "checkout", Target: path, Err: err}
	}

	c.logger.Debug("branch checked out", "path", path, "branch", branch)
	return nil
}

// Pull fast-forwards the current branch from its upstream.
func (c *systemClient) Pull(ctx context.Context, path string) error {
	c.logger.Debug("pulling", "path", path)

	err := c.withRetry(ctx, "pull", func(ctx context.Context) error {
		_, err := execGit(ctx, path, "pull", "--ff-only")
		return err
	})
	if err != nil {
		return &VCSError{Op: "pull", Target: path, Err: err}
	}

	c.logger.Debug("pull complete", "path", path)
	return nil
}

// withRetry runs fn under the retry policy. Each attempt gets its own
// timeout.
func (c *systemClient) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	attempt := 0
	return resilience.Retry(ctx, c.retry, func() error {
		attempt++
		if attempt > 1 {
			c.logger.Info("retrying git command", "op", op, "attempt", attempt)
		}
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return fn(ctx)
	})
}

// CurrentBranch returns the checked-out branch of the working copy at path.
func (c *systemClient) CurrentBranch(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	branch, err := currentBranch(ctx, path)
	if err != nil {
		return "", &VCSError{Op: "branch", Target: path, Err: err}
	}
	return branch, nil
}

// @MX:ANCHOR: [AUTO] execGit is the core git command executor used by every Client method
// @MX:REASON: [AUTO] fan_in=4, called from Clone, Checkout, Pull and the branch helpers
// execGit executes a git command in the given directory and returns stdout.
// It sets GIT_TERMINAL_PROMPT=0 and LC_ALL=C for consistent behavior.
// An empty dir runs git in the process working directory.
func execGit(ctx context.Context, dir string, args ...string) (string, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return "", fmt.Errorf("system git lookup: %w", ErrSystemGitNotFound)
	}

	cmd := exec.CommandContext(ctx, gitPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"LC_ALL=C",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		stderrStr := strings.TrimSpace(stderr.String())
		if len(args) > 0 {
			return "", fmt.Errorf("git %s: %s: %w", args[0], stderrStr, err)
		}
		return "", fmt.Errorf("git: %s: %w", stderrStr, err)
	}

	return strings.TrimRight(stdout.String(), "\n\r"), nil
}

// currentBranch is a package-level helper to get the current branch name.
func currentBranch(ctx context.Context, dir string) (string, error) {
	out, err := execGit(ctx, dir, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		if errors.Is(err, ErrSystemGitNotFound) {
			return "", err
		}
		return "", ErrDetachedHEAD
	}
	return out, nil
}

// branchExists checks whether a local branch exists.
func branchExists(ctx context.Context, dir, name string) bool {
	_, err := execGit(ctx, dir, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}
