package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/internal/ui"
	"github.com/modu-ai/rulesync/pkg/models"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Clone or update every enabled repository",
		Long: `Clone every enabled repository that has no working copy yet and pull
the ones with auto_update enabled. A failing repository is reported and
the remaining repositories are still processed.`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	list, err := deps.Config.Repositories()
	if err != nil {
		return err
	}
	if len(repository.Enabled(list)) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No enabled repositories. Add one with 'rulesync repo add <url>'.")
		return nil
	}

	report, err := syncWithProgress(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), list)
	if err != nil {
		return err
	}

	n := ui.NewNotifier(cmd.OutOrStdout(), deps.Theme)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), n.Summary(report.Succeeded()+len(report.Skipped), len(report.Failed)))
	return nil
}

// syncWithProgress runs a sync batch, showing a progress bar on progressOut
// and event lines on out. Event lines are held back while an animated bar
// is on screen.
func syncWithProgress(ctx context.Context, out, progressOut io.Writer, list []models.RepositoryDescriptor) (*repository.SyncReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	notifier := ui.NewNotifier(out, deps.Theme)
	if ui.Animated(deps.Theme, deps.Headless) {
		notifier.Hold()
	}
	defer notifier.Release()

	// Deferred after Release so the bar is cleared before held lines print.
	bar := ui.NewProgress(deps.Theme, deps.Headless, progressOut).
		Start("Syncing repositories", len(repository.Enabled(list)))
	defer bar.Done()

	s, err := deps.Synchronizer(ui.TrackEvents(bar, notifier))
	if err != nil {
		return nil, err
	}
	return s.Sync(ctx, list), nil
}
