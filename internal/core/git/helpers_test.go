package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// requireGit skips the test when git is not installed.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// runGit runs git in dir with a fixed identity and fails the test on error.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"-c", "user.name=Test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v in %s: %v\n%s", args, dir, err, out)
	}
	return string(out)
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// initTestRemote creates a bare repository with one commit on main that
// contains rules/base.mdc. It returns the bare repository path and a seed
// working copy that pushes to it.
func initTestRemote(t *testing.T) (remote, seed string) {
	t.Helper()
	requireGit(t)

	base := t.TempDir()
	remote = filepath.Join(base, "remote.git")
	seed = filepath.Join(base, "seed")

	runGit(t, base, "init", "--bare", "-q", remote)
	runGit(t, base, "init", "-q", seed)
	runGit(t, seed, "checkout", "-q", "-b", "main")
	writeTestFile(t, filepath.Join(seed, "rules", "base.mdc"), "# base\n")
	runGit(t, seed, "add", ".")
	runGit(t, seed, "commit", "-q", "-m", "initial")
	runGit(t, seed, "remote", "add", "origin", remote)
	runGit(t, seed, "push", "-q", "origin", "main")
	runGit(t, remote, "symbolic-ref", "HEAD", "refs/heads/main")

	return remote, seed
}

// pushCommit adds a file to the seed working copy on its current branch and pushes it.
func pushCommit(t *testing.T, seed, rel, content string) {
	t.Helper()
	writeTestFile(t, filepath.Join(seed, rel), content)
	runGit(t, seed, "add", ".")
	runGit(t, seed, "commit", "-q", "-m", "add "+rel)
	runGit(t, seed, "push", "-q", "origin", "HEAD")
}
