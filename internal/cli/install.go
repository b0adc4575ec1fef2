package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modu-ai/rulesync/internal/core/rules"
	"github.com/modu-ai/rulesync/internal/ui"
	"github.com/modu-ai/rulesync/pkg/models"
)

type installArgs struct {
	all  bool
	sync bool
}

func newInstallCmd() *cobra.Command {
	ia := &installArgs{}

	cmd := &cobra.Command{
		Use:   "install [rule...]",
		Short: "Copy rules into the project's rules directory",
		Long: `Copy rules into the local rules directory (install.local_rules_dir,
default .cursor/rules). Name the rules to install, pass --all, or run
without arguments to pick them interactively. Existing files with the
same name are overwritten.`,
		Example: `  rulesync install go-style testing
  rulesync install --all
  rulesync install --sync`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, ia, args)
		},
	}
	cmd.Flags().BoolVar(&ia.all, "all", false, "Install every discovered rule")
	cmd.Flags().BoolVar(&ia.sync, "sync", false, "Sync repositories before installing")
	return cmd
}

func runInstall(cmd *cobra.Command, ia *installArgs, names []string) error {
	if ia.all && len(names) > 0 {
		return errors.New("pass rule names or --all, not both")
	}

	dest, err := deps.Config.LocalRulesDir()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ia.sync {
		list, err := deps.Config.Repositories()
		if err != nil {
			return err
		}
		if _, err := syncWithProgress(cmd.Context(), out, cmd.ErrOrStderr(), list); err != nil {
			return err
		}
	}

	found, err := discoverRules()
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return ErrNoRules
	}

	var selected []models.RuleDescriptor
	switch {
	case ia.all:
		selected = found

	case len(names) > 0:
		selected, err = rules.Find(found, names)
		if err != nil {
			return err
		}
		// A single rule is a single-item operation: its failure is the
		// command's failure.
		if len(selected) == 1 {
			return deps.Installer(ui.NewNotifier(out, deps.Theme)).Install(selected[0], dest)
		}

	default:
		selected, err = ui.NewRulePicker(deps.Theme, deps.Headless).Pick(found)
		switch {
		case errors.Is(err, ui.ErrCancelled):
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil
		case errors.Is(err, ui.ErrHeadlessNoSelection):
			return fmt.Errorf("%w: name the rules to install or pass --all", err)
		case err != nil:
			return err
		}
		if len(selected) == 0 {
			_, _ = fmt.Fprintln(out, "Nothing selected.")
			return nil
		}
	}

	report := installWithProgress(cmd, ia.all, selected, dest)
	_, _ = fmt.Fprintln(out, ui.NewNotifier(out, deps.Theme).Summary(report.SucceededCount(), report.FailedCount()))
	return nil
}

// installWithProgress installs a batch behind a progress bar on stderr.
// Event lines go to stdout once the bar is gone.
func installWithProgress(cmd *cobra.Command, all bool, selected []models.RuleDescriptor, dest string) *rules.InstallReport {
	notifier := ui.NewNotifier(cmd.OutOrStdout(), deps.Theme)
	if ui.Animated(deps.Theme, deps.Headless) {
		notifier.Hold()
	}
	defer notifier.Release()

	bar := ui.NewProgress(deps.Theme, deps.Headless, cmd.ErrOrStderr()).
		Start("Installing rules", len(selected))
	defer bar.Done()

	installer := deps.Installer(ui.TrackEvents(bar, notifier))
	if all {
		return installer.InstallAll(selected, dest)
	}
	return installer.InstallSelected(selected, dest)
}
