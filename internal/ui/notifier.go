package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/modu-ai/rulesync/pkg/models"
)

// Notifier renders events as one styled line each.
type Notifier struct {
	mu    sync.Mutex
	w     io.Writer
	theme *Theme

	// held is non-nil while output is deferred behind a live progress bar.
	held []string
}

var _ models.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier writing to w.
func NewNotifier(w io.Writer, theme *Theme) *Notifier {
	return &Notifier{w: w, theme: theme}
}

// Notify implements models.Notifier.
func (n *Notifier) Notify(e models.Event) {
	line := n.Format(e)
	if line == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.held != nil {
		n.held = append(n.held, line)
		return
	}
	_, _ = fmt.Fprintln(n.w, line)
}

// Hold defers output until Release. Used while an interactive progress bar
// owns the terminal.
func (n *Notifier) Hold() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.held == nil {
		n.held = []string{}
	}
}

// Release writes deferred lines and resumes direct output.
func (n *Notifier) Release() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, line := range n.held {
		_, _ = fmt.Fprintln(n.w, line)
	}
	n.held = nil
}

// Format returns the display line for e. Start events produce no line.
func (n *Notifier) Format(e models.Event) string {
	t := n.theme
	switch e.Kind {
	case models.EventCloned:
		return t.Success().Render("✓") + " cloned " + e.RepositoryURL
	case models.EventUpdated:
		return t.Success().Render("✓") + " updated " + e.RepositoryURL
	case models.EventSkipped:
		return t.Muted().Render("• skipped "+e.RepositoryURL+" (auto-update off)")
	case models.EventSyncFailed:
		return t.Error().Render("✗") + fmt.Sprintf(" %s: %v", e.RepositoryURL, e.Err)
	case models.EventRuleInstalled:
		return t.Success().Render("✓") + " installed " + e.Rule
	case models.EventRuleFailed:
		return t.Error().Render("✗") + fmt.Sprintf(" %s: %v", e.Rule, e.Err)
	}
	return ""
}

// Summary formats the "N succeeded, M failed" line printed after a batch.
func (n *Notifier) Summary(succeeded, failed int) string {
	text := fmt.Sprintf("%d succeeded, %d failed", succeeded, failed)
	if failed > 0 {
		return n.theme.Warning().Render(text)
	}
	return n.theme.Success().Render(text)
}
