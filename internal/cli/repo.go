package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/internal/ui"
	"github.com/modu-ai/rulesync/pkg/models"
)

func newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage rule repositories",
	}
	cmd.AddCommand(
		newRepoListCmd(),
		newRepoAddCmd(),
		newRepoRemoveCmd(),
		newRepoToggleCmd("enable", "Include a repository in sync and listing", true),
		newRepoToggleCmd("disable", "Exclude a repository from sync and listing", false),
		newRepoUpdateCmd(),
		newRepoStatusCmd(),
	)
	return cmd
}

func newRepoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := deps.Config.Repositories()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No repositories configured.")
				return nil
			}

			t := newTable(deps.Theme, "URL", "ENABLED", "BRANCH", "RULES DIR", "AUTO UPDATE")
			for _, d := range list {
				t.Row(d.URL, strconv.FormatBool(d.Enabled), d.Branch, d.RulesDir, strconv.FormatBool(d.AutoUpdate))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

type repoAddArgs struct {
	branch       string
	rulesDir     string
	noAutoUpdate bool
	disabled     bool
}

func newRepoAddCmd() *cobra.Command {
	ra := &repoAddArgs{}

	cmd := &cobra.Command{
		Use:   "add [url]",
		Short: "Add a repository, or replace the one with the same URL",
		Long: `Add a repository to the configuration. Adding a URL that is already
configured replaces its settings. Without a URL an interactive form asks
for the repository details.

Changing the branch of an existing repository does not touch its working
copy; run 'rulesync repo update <url>' to switch it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d models.RepositoryDescriptor
			if len(args) == 1 {
				d = models.NewRepositoryDescriptor(args[0])
				d.Branch = ra.branch
				d.RulesDir = ra.rulesDir
				d.AutoUpdate = !ra.noAutoUpdate
				d.Enabled = !ra.disabled
			} else {
				deps.Headless.SetDefaults(map[string]string{
					ui.DefaultKeyBranch:     ra.branch,
					ui.DefaultKeyRulesDir:   ra.rulesDir,
					ui.DefaultKeyAutoUpdate: strconv.FormatBool(!ra.noAutoUpdate),
					ui.DefaultKeyEnabled:    strconv.FormatBool(!ra.disabled),
				})
				var err error
				d, err = ui.NewRepositoryForm(deps.Theme, deps.Headless).Run(cmd.Context())
				if err != nil {
					return fmt.Errorf("%w: pass the repository URL as an argument", err)
				}
			}

			list, err := deps.Config.Repositories()
			if err != nil {
				return err
			}
			_, findErr := repository.Find(list, d.URL)
			if err := deps.Config.SetRepositories(repository.Upsert(list, d)); err != nil {
				return err
			}

			verb := "Added"
			if findErr == nil {
				verb = "Updated"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (branch %s, rules dir %s)\n", verb, d.URL, d.Branch, d.RulesDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&ra.branch, "branch", models.DefaultBranch, "Branch to check out")
	cmd.Flags().StringVar(&ra.rulesDir, "rules-dir", models.DefaultRulesDir, "Directory inside the repository that holds the rules")
	cmd.Flags().BoolVar(&ra.noAutoUpdate, "no-auto-update", false, "Only update on 'rulesync repo update'")
	cmd.Flags().BoolVar(&ra.disabled, "disabled", false, "Add the repository disabled")
	return cmd
}

func newRepoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>",
		Short: "Remove a repository from the configuration",
		Long: `Remove a repository from the configuration. Its working copy stays on
disk and can be deleted by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := deps.Config.Repositories()
			if err != nil {
				return err
			}
			next, err := repository.Remove(list, args[0])
			if err != nil {
				return err
			}
			if err := deps.Config.SetRepositories(next); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			if root, err := deps.ReposDir(); err == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(),
					deps.Theme.Muted().Render("Working copy kept at "+repository.WorkingCopyPath(root, args[0])))
			}
			return nil
		},
	}
}

func newRepoToggleCmd(name, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <url>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := deps.Config.Repositories()
			if err != nil {
				return err
			}
			next, err := repository.SetEnabled(list, args[0], enabled)
			if err != nil {
				return err
			}
			if err := deps.Config.SetRepositories(next); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%sd %s\n", strings.ToUpper(name[:1])+name[1:], args[0])
			return nil
		},
	}
}

func newRepoUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <url>",
		Short: "Check out the configured branch and pull one repository",
		Long: `Bring one repository's working copy up to date, cloning it when it is
missing. Unlike 'rulesync sync' this ignores auto_update and applies a
changed branch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := deps.Config.Repositories()
			if err != nil {
				return err
			}
			d, err := repository.Find(list, args[0])
			if err != nil {
				return err
			}

			notifier := ui.NewNotifier(cmd.OutOrStdout(), deps.Theme)
			s, err := deps.Synchronizer(notifier)
			if err != nil {
				return err
			}

			if ui.Animated(deps.Theme, deps.Headless) {
				notifier.Hold()
			}
			sp := ui.NewProgress(deps.Theme, deps.Headless, cmd.ErrOrStderr()).
				Spinner("Updating " + repository.WorkingCopyName(d.URL))
			err = s.Update(cmd.Context(), d)
			sp.Stop()
			notifier.Release()
			return err
		},
	}
}

func newRepoStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of each working copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := deps.Config.Repositories()
			if err != nil {
				return err
			}
			s, err := deps.Synchronizer(nil)
			if err != nil {
				return err
			}

			t := newTable(deps.Theme, "URL", "ENABLED", "BRANCH", "STATE", "PATH")
			for _, st := range s.Status(cmd.Context(), list) {
				t.Row(st.URL, strconv.FormatBool(st.Enabled), st.Branch, statusState(st), st.Path)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func statusState(st repository.WorkingCopyStatus) string {
	switch {
	case !st.Cloned:
		return "not cloned"
	case st.Err != nil:
		return "error: " + st.Err.Error()
	case st.BranchMismatch():
		return fmt.Sprintf("on %s, run repo update", st.CurrentBranch)
	}
	return "ok"
}

func newTable(theme *ui.Theme, headers ...string) *table.Table {
	return table.New().
		Headers(headers...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.Muted()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.Title().Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
