// Package models provides shared data models for rulesync.
//
// # Repositories
//
// A [RepositoryDescriptor] describes one remote Git repository that
// publishes rule files. Descriptors are keyed by URL; defaults for missing
// fields are applied when the descriptor is decoded from YAML:
//
//	d := models.NewRepositoryDescriptor("https://github.com/acme/rules.git")
//	fmt.Println(d.Branch, d.RulesDir) // "main rules"
//
// # Rules
//
// A [RuleDescriptor] is produced by scanning a working copy. It is never
// persisted and points back to its repository by URL only:
//
//	r := models.RuleDescriptor{Name: "go-style", SourceDir: "/tmp/rules"}
//	fmt.Println(r.SourcePath()) // "/tmp/rules/go-style.mdc"
package models
