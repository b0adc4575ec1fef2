package rules

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/pkg/models"
)

func TestList_FiltersEntries(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := models.NewRepositoryDescriptor("https://example.com/team/rules.git")
	dir := seedRules(t, root, d, map[string]string{
		"go-style.mdc":     "# go",
		"testing.mdc":      "# test",
		"README.md":        "readme",
		"notes.mdc.bak":    "old",
		".mdc":             "no name",
		"nested/inner.mdc": "# nested",
	})
	if err := os.Mkdir(filepath.Join(dir, "folder.mdc"), 0o755); err != nil {
		t.Fatal(err)
	}

	rules, err := NewAggregator(root).List([]models.RepositoryDescriptor{d})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}

	want := map[string]int{"go-style": 1, "testing": 1}
	if got := ruleNames(rules); !reflect.DeepEqual(got, want) {
		t.Errorf("rule names = %v, want %v", got, want)
	}
	for _, r := range rules {
		if r.RepositoryURL != d.URL {
			t.Errorf("RepositoryURL = %q, want %q", r.RepositoryURL, d.URL)
		}
		if r.SourceDir != dir {
			t.Errorf("SourceDir = %q, want %q", r.SourceDir, dir)
		}
	}
}

func TestList_FollowsSymlinkToFile(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	d := models.NewRepositoryDescriptor("https://example.com/links.git")
	dir := seedRules(t, root, d, map[string]string{"real.mdc": "# real"})
	if err := os.Symlink(filepath.Join(dir, "real.mdc"), filepath.Join(dir, "alias.mdc")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "dangling.mdc")); err != nil {
		t.Fatal(err)
	}

	rules, err := NewAggregator(root).List([]models.RepositoryDescriptor{d})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"real": 1, "alias": 1}
	if got := ruleNames(rules); !reflect.DeepEqual(got, want) {
		t.Errorf("rule names = %v, want %v", got, want)
	}
}

func TestList_SkipsMissingAndDisabled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := models.NewRepositoryDescriptor("https://example.com/a.git")
	b := models.NewRepositoryDescriptor("https://example.com/b.git")
	b.Enabled = false
	notCloned := models.NewRepositoryDescriptor("https://example.com/not-cloned.git")
	wrongDir := models.NewRepositoryDescriptor("https://example.com/wrong-dir.git")
	wrongDir.RulesDir = "cursor/rules"

	seedRules(t, root, a, map[string]string{"a1.mdc": "a1", "a2.mdc": "a2"})
	seedRules(t, root, b, map[string]string{"b1.mdc": "b1"})
	// Working copy present, configured rules_dir absent.
	seedRules(t, root, models.RepositoryDescriptor{URL: wrongDir.URL, RulesDir: "rules"}, map[string]string{"x.mdc": "x"})

	rules, err := NewAggregator(root).List([]models.RepositoryDescriptor{a, b, notCloned, wrongDir})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := map[string]int{"a1": 1, "a2": 1}
	if got := ruleNames(rules); !reflect.DeepEqual(got, want) {
		t.Errorf("rule names = %v, want %v", got, want)
	}
}

func TestList_RulesDirIsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := models.NewRepositoryDescriptor("https://example.com/file.git")
	writeFile(t, filepath.Join(repository.WorkingCopyPath(root, d.URL), "rules"), "not a dir")

	rules, err := NewAggregator(root).List([]models.RepositoryDescriptor{d})
	if err != nil || len(rules) != 0 {
		t.Errorf("List = %v, %v; want empty, nil", rules, err)
	}
}

func TestList_NoDeduplicationAcrossRepositories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := models.NewRepositoryDescriptor("https://example.com/a.git")
	b := models.NewRepositoryDescriptor("https://example.com/b.git")
	seedRules(t, root, a, map[string]string{"shared.mdc": "from a"})
	seedRules(t, root, b, map[string]string{"shared.mdc": "from b"})

	rules, err := NewAggregator(root).List([]models.RepositoryDescriptor{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 2 {
		t.Fatalf("len = %d, want 2", len(rules))
	}
	if rules[0].RepositoryURL != a.URL || rules[1].RepositoryURL != b.URL {
		t.Errorf("rules not in repository order: %+v", rules)
	}
}

func TestList_Idempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := models.NewRepositoryDescriptor("https://example.com/a.git")
	seedRules(t, root, a, map[string]string{"one.mdc": "1", "two.mdc": "2", "three.mdc": "3"})
	agg := NewAggregator(root)
	list := []models.RepositoryDescriptor{a}

	first, err := agg.List(list)
	if err != nil {
		t.Fatal(err)
	}
	second, err := agg.List(list)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("List not idempotent:\n%v\n%v", first, second)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	rules := []models.RuleDescriptor{
		{Name: "go-style", RepositoryURL: "a"},
		{Name: "shared", RepositoryURL: "a"},
		{Name: "shared", RepositoryURL: "b"},
		// Decomposed form, as stored by some filesystems.
		{Name: "cafe\u0301", RepositoryURL: "b"},
	}

	tests := []struct {
		name    string
		names   []string
		want    int
		wantErr bool
	}{
		{"single", []string{"go-style"}, 1, false},
		{"with extension", []string{"go-style.mdc"}, 1, false},
		{"shared name matches every repository", []string{"shared"}, 2, false},
		{"composed input matches decomposed name", []string{"caf\u00e9"}, 1, false},
		{"unknown", []string{"go-style", "nope"}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Find(rules, tt.names)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrRuleNotFound) {
				t.Errorf("err = %v, want ErrRuleNotFound", err)
			}
		})
	}
}
