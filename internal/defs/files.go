package defs

// Directory names used across the project.
const (
	// RulesyncDir is the per-workspace configuration directory.
	RulesyncDir = ".rulesync"

	// ConfigSubdir holds configuration below RulesyncDir.
	ConfigSubdir = "config"

	// SectionsSubdir holds the YAML section files below ConfigSubdir.
	SectionsSubdir = "config/sections"

	// ReposSubdir holds working copies below the user's RulesyncDir.
	ReposSubdir = "repos"

	// DefaultLocalRulesDir is the install destination relative to the workspace.
	DefaultLocalRulesDir = ".cursor/rules"
)

// Section YAML file names under .rulesync/config/sections/.
const (
	RepositoriesYAML = "repositories.yaml"
	InstallYAML      = "install.yaml"
	SystemYAML       = "system.yaml"
)
