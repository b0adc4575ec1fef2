package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/pkg/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// seedRules writes rule files into the working copy of d under root.
func seedRules(t *testing.T, root string, d models.RepositoryDescriptor, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(repository.WorkingCopyPath(root, d.URL), d.RulesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

func ruleNames(rules []models.RuleDescriptor) map[string]int {
	out := make(map[string]int)
	for _, r := range rules {
		out[r.Name]++
	}
	return out
}
