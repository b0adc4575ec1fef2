package rules

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/modu-ai/rulesync/internal/core/git/gittest"
	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/pkg/models"
)

type recorder struct{ events []models.Event }

func (r *recorder) Notify(e models.Event) { r.events = append(r.events, e) }

func rule(t *testing.T, dir, name, content string) models.RuleDescriptor {
	t.Helper()
	writeFile(t, filepath.Join(dir, name+models.RuleExtension), content)
	return models.RuleDescriptor{Name: name, RepositoryURL: "https://example.com/r.git", SourceDir: dir}
}

func TestInstall_RoundTrip(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), ".cursor", "rules")
	content := "---\ndescription: go\n---\n# Go style\n\x00binary\xff"
	r := rule(t, src, "go-style", content)
	rec := &recorder{}

	if err := NewInstaller(rec).Install(r, dest); err != nil {
		t.Fatalf("Install error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "go-style.mdc"))
	if err != nil {
		t.Fatalf("read installed rule: %v", err)
	}
	if !bytes.Equal(got, []byte(content)) {
		t.Errorf("installed bytes = %q, want %q", got, content)
	}
	if len(rec.events) != 1 || rec.events[0].Kind != models.EventRuleInstalled || rec.events[0].Rule != "go-style" {
		t.Errorf("events = %+v", rec.events)
	}
}

func TestInstall_Overwrites(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(dest, "style.mdc"), "old content that is longer than the new one")
	r := rule(t, src, "style", "new")

	if err := NewInstaller(nil).Install(r, dest); err != nil {
		t.Fatalf("Install error: %v", err)
	}

	got, _ := os.ReadFile(filepath.Join(dest, "style.mdc"))
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dest entries = %v, want only style.mdc", names)
	}
}

func TestInstall_SourceMissing(t *testing.T) {
	t.Parallel()

	r := models.RuleDescriptor{Name: "gone", RepositoryURL: "u", SourceDir: t.TempDir()}
	rec := &recorder{}

	err := NewInstaller(rec).Install(r, t.TempDir())
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("err = %v, want ErrSourceMissing", err)
	}
	var ierr *InstallError
	if !errors.As(err, &ierr) || ierr.Rule != "gone" {
		t.Errorf("err = %#v, want *InstallError for gone", err)
	}
	if len(rec.events) != 1 || rec.events[0].Kind != models.EventRuleFailed || rec.events[0].Rule != "gone" {
		t.Errorf("events = %+v", rec.events)
	}
}

func TestInstall_DestinationUnwritable(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	r := rule(t, src, "x", "x")

	// A regular file where the destination directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	writeFile(t, blocker, "")

	err := NewInstaller(nil).Install(r, filepath.Join(blocker, "rules"))
	if !errors.Is(err, ErrDestinationUnwritable) {
		t.Errorf("err = %v, want ErrDestinationUnwritable", err)
	}
}

func TestInstall_ReadOnlyDestination(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}

	src := t.TempDir()
	r := rule(t, src, "x", "x")
	dest := t.TempDir()
	if err := os.Chmod(dest, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dest, 0o755) })

	if err := NewInstaller(nil).Install(r, dest); !errors.Is(err, ErrDestinationUnwritable) {
		t.Errorf("err = %v, want ErrDestinationUnwritable", err)
	}
}

func TestInstall_RejectsTraversal(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"../escape", "sub/dir", "/abs"} {
		r := models.RuleDescriptor{Name: name, SourceDir: t.TempDir()}
		if err := NewInstaller(nil).Install(r, t.TempDir()); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("Install(%q) err = %v, want ErrPathTraversal", name, err)
		}
	}
}

func TestInstallAll_Isolation(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dest := t.TempDir()
	rules := []models.RuleDescriptor{
		rule(t, src, "one", "1"),
		{Name: "two", RepositoryURL: "u", SourceDir: filepath.Join(src, "pruned")},
		rule(t, src, "three", "3"),
	}

	report := NewInstaller(nil).InstallAll(rules, dest)

	if report.SucceededCount() != 2 || report.FailedCount() != 1 {
		t.Fatalf("report = %d succeeded / %d failed, want 2 / 1", report.SucceededCount(), report.FailedCount())
	}
	if report.Failed[0].Rule.Name != "two" {
		t.Errorf("failed rule = %q, want two", report.Failed[0].Rule.Name)
	}
	for _, n := range []string{"one.mdc", "three.mdc"} {
		if _, err := os.Stat(filepath.Join(dest, n)); err != nil {
			t.Errorf("%s not installed: %v", n, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "two.mdc")); !os.IsNotExist(err) {
		t.Error("two.mdc should not exist")
	}
}

func TestInstallSelected_LaterDuplicateWins(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	first := rule(t, t.TempDir(), "shared", "first")
	second := rule(t, t.TempDir(), "shared", "second")

	report := NewInstaller(nil).InstallSelected([]models.RuleDescriptor{first, second}, dest)
	if report.SucceededCount() != 2 {
		t.Fatalf("SucceededCount = %d, want 2", report.SucceededCount())
	}
	got, _ := os.ReadFile(filepath.Join(dest, "shared.mdc"))
	if string(got) != "second" {
		t.Errorf("content = %q, want second", got)
	}
}

func TestSyncListInstallScenario(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dest := t.TempDir()
	vcs := gittest.NewFakeClient()

	a := models.NewRepositoryDescriptor("https://example.com/a.git")
	b := models.NewRepositoryDescriptor("https://example.com/b.git")
	b.Enabled = false
	vcs.AddFile(a.URL, "rules/alpha.mdc", "# alpha")
	vcs.AddFile(a.URL, "rules/beta.mdc", "# beta")
	vcs.AddFile(b.URL, "rules/gamma.mdc", "# gamma")
	list := []models.RepositoryDescriptor{a, b}

	report := repository.NewSynchronizer(vcs, root, nil).Sync(t.Context(), list)
	if len(report.Cloned) != 1 || report.Cloned[0] != a.URL {
		t.Fatalf("Cloned = %v, want only A", report.Cloned)
	}

	rules, err := NewAggregator(root).List(list)
	if err != nil {
		t.Fatal(err)
	}
	if got := ruleNames(rules); len(got) != 2 || got["alpha"] != 1 || got["beta"] != 1 {
		t.Fatalf("rules = %v, want alpha and beta", got)
	}

	ir := NewInstaller(nil).InstallAll(rules, dest)
	if ir.SucceededCount() != 2 || ir.FailedCount() != 0 {
		t.Errorf("install report = %+v", ir)
	}
}
