package models

import "gopkg.in/yaml.v3"

// Repository descriptor defaults applied when a field is absent.
const (
	DefaultBranch     = "main"
	DefaultRulesDir   = "rules"
	DefaultAutoUpdate = true
	DefaultEnabled    = true
)

// RepositoryDescriptor identifies a remote rules repository.
// URL is the unique key within the configured list.
type RepositoryDescriptor struct {
	URL        string `yaml:"url" json:"url"`
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Branch     string `yaml:"branch" json:"branch"`
	RulesDir   string `yaml:"rules_dir" json:"rules_dir"`
	AutoUpdate bool   `yaml:"auto_update" json:"auto_update"`
}

// NewRepositoryDescriptor returns a descriptor for url with every other
// field set to its default.
func NewRepositoryDescriptor(url string) RepositoryDescriptor {
	return RepositoryDescriptor{
		URL:        url,
		Enabled:    DefaultEnabled,
		Branch:     DefaultBranch,
		RulesDir:   DefaultRulesDir,
		AutoUpdate: DefaultAutoUpdate,
	}
}

// rawRepositoryDescriptor mirrors RepositoryDescriptor with pointer fields
// so that absent keys can be told apart from explicit zero values.
type rawRepositoryDescriptor struct {
	URL        string  `yaml:"url"`
	Enabled    *bool   `yaml:"enabled"`
	Branch     *string `yaml:"branch"`
	RulesDir   *string `yaml:"rules_dir"`
	AutoUpdate *bool   `yaml:"auto_update"`
}

// UnmarshalYAML decodes a descriptor and fills absent fields with defaults.
// An explicitly empty branch or rules_dir is also replaced by its default.
func (d *RepositoryDescriptor) UnmarshalYAML(node *yaml.Node) error {
	var raw rawRepositoryDescriptor
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := NewRepositoryDescriptor(raw.URL)
	if raw.Enabled != nil {
		out.Enabled = *raw.Enabled
	}
	if raw.Branch != nil && *raw.Branch != "" {
		out.Branch = *raw.Branch
	}
	if raw.RulesDir != nil && *raw.RulesDir != "" {
		out.RulesDir = *raw.RulesDir
	}
	if raw.AutoUpdate != nil {
		out.AutoUpdate = *raw.AutoUpdate
	}

	*d = out
	return nil
}
