package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/internal/core/rules"
	"github.com/modu-ai/rulesync/internal/ui"
	"github.com/modu-ai/rulesync/pkg/models"
)

// ErrNoRules indicates aggregation found nothing to work with.
var ErrNoRules = errors.New("no rules found; run 'rulesync sync' first")

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the rules available in synced repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			found, err := discoverRules()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if found == nil {
					found = []models.RuleDescriptor{}
				}
				return enc.Encode(found)
			}

			if len(found) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), ErrNoRules.Error())
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rulesTable(found, deps.Theme))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print rules as JSON")
	return cmd
}

// discoverRules aggregates the rules of the configured repositories.
// Unreadable rules directories are logged; their repositories are skipped.
func discoverRules() ([]models.RuleDescriptor, error) {
	list, err := deps.Config.Repositories()
	if err != nil {
		return nil, err
	}
	agg, err := deps.Aggregator()
	if err != nil {
		return nil, err
	}
	found, err := agg.List(list)
	if err != nil {
		deps.Logger.Warn("some rules directories could not be read", "error", err)
	}
	return found, nil
}

func rulesTable(found []models.RuleDescriptor, theme *ui.Theme) string {
	t := newTable(theme, "RULE", "REPOSITORY")
	for _, r := range found {
		t.Row(r.Name, r.RepositoryURL)
	}
	return t.Render()
}

func newShowCmd() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show <rule>",
		Short: "Render a rule in the terminal",
		Long: `Render a rule file as formatted markdown. When several repositories
provide a rule with the same name, each one is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := discoverRules()
			if err != nil {
				return err
			}
			matches, err := rules.Find(found, args)
			if err != nil {
				return err
			}

			if width <= 0 {
				width = terminalWidth()
			}
			for _, r := range matches {
				content, err := os.ReadFile(r.SourcePath())
				if err != nil {
					return fmt.Errorf("read rule %s: %w", r.Name, err)
				}
				title := fmt.Sprintf("%s (%s)", r.Name, repository.WorkingCopyName(r.RepositoryURL))
				out, err := ui.RenderRule(title, content, deps.Theme, width)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (default: terminal width)")
	return cmd
}

// terminalWidth returns the width of stdout, or the default render width
// when stdout is not a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return ui.DefaultRenderWidth
	}
	return min(w, 120)
}
