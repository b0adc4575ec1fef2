// Package project locates the rulesync workspace a command operates on.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/modu-ai/rulesync/internal/defs"
)

// @MX:ANCHOR: [AUTO] FindWorkspaceRoot anchors every command without --root to one workspace
// @MX:REASON: [AUTO] configuration, install destination and relative repos_dir all resolve against its result
// FindWorkspaceRoot returns the nearest directory at or above start that
// holds a .rulesync/config directory. The search stops at the first
// directory containing .git, so a repository nested in another workspace
// stays separate, and that repository root becomes the workspace. When
// neither marker is found, start itself is the workspace.
func FindWorkspaceRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	for dir := abs; ; {
		if isDir(filepath.Join(dir, defs.RulesyncDir, defs.ConfigSubdir)) {
			return dir, nil
		}
		if exists(filepath.Join(dir, ".git")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// FindWorkspaceRootOrCurrent is FindWorkspaceRoot starting from the
// working directory.
func FindWorkspaceRootOrCurrent() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return FindWorkspaceRoot(wd)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// exists accepts files too: .git is a file in worktrees and submodules.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
