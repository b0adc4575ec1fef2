package models

import "path/filepath"

// RuleExtension is the file extension that marks a rule file.
const RuleExtension = ".mdc"

// RuleDescriptor describes a rule discovered in a working copy.
// RepositoryURL is a lookup key, not an ownership link.
type RuleDescriptor struct {
	Name          string `json:"name"`
	RepositoryURL string `json:"repository_url"`
	// SourceDir is the directory holding the rule file.
	SourceDir string `json:"source_dir"`
}

// FileName returns the rule's file name including the extension.
func (r RuleDescriptor) FileName() string {
	return r.Name + RuleExtension
}

// SourcePath returns the absolute location of the rule file.
func (r RuleDescriptor) SourcePath() string {
	return filepath.Join(r.SourceDir, r.FileName())
}
