package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change rulesync settings",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetDirCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration after defaults and RULESYNC_* environment
overrides have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := deps.Config.Get()
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# workspace: %s\n%s", deps.Config.Root(), data)
			return nil
		},
	}
}

func newConfigSetDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-dir <path>",
		Short: "Set the directory rules are installed into",
		Long: `Set install.local_rules_dir. A relative path is resolved against the
workspace root when rules are installed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Config.SetLocalRulesDir(args[0]); err != nil {
				return err
			}
			dest, err := deps.Config.LocalRulesDir()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rules will be installed into %s\n", dest)
			return nil
		},
	}
}
