package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modu-ai/rulesync/internal/core/project"
	"github.com/modu-ai/rulesync/internal/logging"
	"github.com/modu-ai/rulesync/internal/ui"
	"github.com/modu-ai/rulesync/pkg/version"
)

const (
	cmdName = "rulesync"
	cmdDesc = "Sync shared rule files from Git repositories into your project"
)

// errDependencies is returned when a command runs before InitDependencies.
var errDependencies = errors.New("dependencies not initialized")

// RootArgs holds the global flags.
type RootArgs struct {
	Root           string
	NonInteractive bool
	NoColor        bool
	LogLevel       string
	LogFormat      string
}

// AddFlags registers the global flags on cmd.
func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&ra.Root, "root", "", "Workspace root (default: nearest directory with .rulesync/config, else the enclosing git repository root)")
	pf.BoolVar(&ra.NonInteractive, "non-interactive", false, "Never prompt; fail when a choice is needed")
	pf.BoolVar(&ra.NoColor, "no-color", false, "Disable colours and animations")
	pf.StringVar(&ra.LogLevel, "log-level", "", fmt.Sprintf("Log level, one of: %s", logging.AllLevels))
	pf.StringVar(&ra.LogFormat, "log-format", "", fmt.Sprintf("Log format, one of: %s", logging.AllFormats))

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(logging.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(logging.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	args := &RootArgs{}

	cmd := &cobra.Command{
		Use:   cmdName,
		Short: cmdDesc,
		Long: `rulesync keeps local clones of Git repositories that publish rule files
(*.mdc) and copies the rules you choose into your project's rules folder.

Typical flow:
  rulesync repo add https://github.com/acme/cursor-rules.git
  rulesync sync
  rulesync install`,
		Version:           version.GetVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup(args),
	}
	cmd.SetVersionTemplate(fmt.Sprintf("%s %s\n", cmdName, version.GetFullVersion()))

	args.AddFlags(cmd)
	cmd.AddCommand(
		newSyncCmd(),
		newListCmd(),
		newShowCmd(),
		newInstallCmd(),
		newRepoCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

// @MX:ANCHOR: [AUTO] Execute is the main entry point for the rulesync CLI
// @MX:REASON: [AUTO] called from cmd/rulesync/main.go; tests build the tree with NewRootCmd
// Execute initializes dependencies and runs the root command. Cancelling
// ctx stops in-flight git commands.
func Execute(ctx context.Context) error {
	InitDependencies()
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads the workspace configuration and applies the global flags.
// Flags take precedence over the configuration files.
func setup(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if deps == nil {
			return errDependencies
		}

		root, err := workspaceRoot(ra.Root)
		if err != nil {
			return err
		}

		cfg, err := deps.Config.Load(root)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level, format, noColor := cfg.System.LogLevel, cfg.System.LogFormat, cfg.System.NoColor
		if cmd.Flags().Changed("log-level") {
			level = ra.LogLevel
		}
		if cmd.Flags().Changed("log-format") {
			format = ra.LogFormat
		}
		if ra.NoColor {
			noColor = true
		}

		logger, err := logging.Setup(cmd.ErrOrStderr(), logging.Options{
			Level:   level,
			Format:  format,
			NoColor: noColor,
		})
		if err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}
		deps.Logger = logger.With("module", "cli")

		if deps.Theme == nil || noColor {
			deps.Theme = ui.NewTheme(ui.ThemeConfig{NoColor: noColor})
		}
		if ra.NonInteractive || cfg.System.NonInteractive {
			deps.Headless.ForceHeadless(true)
		}

		slog.Debug("workspace loaded", "root", root, "repositories", len(cfg.Repositories))
		return nil
	}
}

// workspaceRoot returns the --root flag as an absolute path, or the
// workspace found from the working directory when the flag is empty.
func workspaceRoot(flag string) (string, error) {
	if flag == "" {
		return project.FindWorkspaceRootOrCurrent()
	}
	root, err := filepath.Abs(flag)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root: %w", err)
	}
	return root, nil
}
