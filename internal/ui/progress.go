package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/pkg/models"
)

const barWidth = 40

// progressImpl implements the Progress interface.
type progressImpl struct {
	theme    *Theme
	headless *HeadlessManager
	writer   io.Writer
}

// NewProgress creates a Progress that writes to w. A nil writer means
// os.Stderr, keeping stdout free for command output such as `list --json`.
func NewProgress(theme *Theme, hm *HeadlessManager, w io.Writer) Progress {
	if w == nil {
		w = os.Stderr
	}
	return &progressImpl{theme: theme, headless: hm, writer: w}
}

// Animated reports whether progress is drawn by bubbletea rather than
// printed line by line.
func Animated(theme *Theme, hm *HeadlessManager) bool {
	return !hm.IsHeadless() && !theme.NoColor
}

// Start creates a bar for total items.
func (p *progressImpl) Start(title string, total int) ProgressBar {
	if !Animated(p.theme, p.headless) {
		return &lineProgressBar{theme: p.theme, label: title, title: title, total: total, writer: p.writer}
	}
	return &animatedProgressBar{runner: startRunner(newProgressModel(p.theme, title, total), p.writer)}
}

// Spinner creates an indeterminate spinner.
func (p *progressImpl) Spinner(title string) Spinner {
	if !Animated(p.theme, p.headless) {
		_, _ = fmt.Fprintln(p.writer, title)
		return &lineSpinner{writer: p.writer}
	}
	return &animatedSpinner{runner: startRunner(newSpinnerModel(p.theme, title), p.writer)}
}

// TrackEvents returns a Notifier that forwards every event to next and
// drives bar from the batch events: a start event sets the title, a
// result event finishes one step.
func TrackEvents(bar ProgressBar, next models.Notifier) models.Notifier {
	return models.NotifierFunc(func(e models.Event) {
		if next != nil {
			next.Notify(e)
		}
		switch e.Kind {
		case models.EventSyncStarted:
			bar.SetTitle("Syncing " + repository.WorkingCopyName(e.RepositoryURL))
		case models.EventCloned, models.EventUpdated, models.EventSkipped, models.EventRuleInstalled:
			bar.Step(false)
		case models.EventSyncFailed, models.EventRuleFailed:
			bar.Step(true)
		}
	})
}

// --- bubbletea plumbing ---

// titleMsg replaces the title of a spinner or bar.
type titleMsg string

// stepMsg finishes one item of a bar.
type stepMsg struct{ failed bool }

// doneMsg ends a program.
type doneMsg struct{}

// runner drives a bubbletea program on its own goroutine. The program
// renders to the given writer and leaves stdin alone, so git or a form can
// own terminal input meanwhile. Interrupts still arrive as signals.
type runner struct {
	program *tea.Program
	once    sync.Once
}

// @MX:WARN: [AUTO] the program goroutine lives until stop; a missing Done or Stop leaks it
// @MX:REASON: [AUTO] goroutine lifetime is bound to the tea.Program lifetime
func startRunner(m tea.Model, w io.Writer) *runner {
	r := &runner{program: tea.NewProgram(m, tea.WithOutput(w), tea.WithInput(nil))}
	go func() {
		_, _ = r.program.Run()
	}()
	return r
}

func (r *runner) send(msg tea.Msg) {
	r.program.Send(msg)
}

// stop ends the program once and waits until its last frame is drawn.
func (r *runner) stop() {
	r.once.Do(func() {
		r.program.Send(doneMsg{})
		r.program.Wait()
	})
}

// --- spinner ---

type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(theme *Theme, title string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !theme.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))
	}
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case titleMsg:
		m.title = string(msg)
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

type animatedSpinner struct {
	runner *runner
}

func (s *animatedSpinner) SetTitle(title string) { s.runner.send(titleMsg(title)) }
func (s *animatedSpinner) Stop()                 { s.runner.stop() }

// lineSpinner prints each title on its own line.
type lineSpinner struct {
	writer io.Writer
}

func (s *lineSpinner) SetTitle(title string) { _, _ = fmt.Fprintln(s.writer, title) }
func (s *lineSpinner) Stop()                 {}

// --- progress bar ---

type progressModel struct {
	bar     progress.Model
	warn    lipgloss.Style
	title   string
	current int
	total   int
	failed  int
	done    bool
}

func newProgressModel(theme *Theme, title string, total int) progressModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	if !theme.NoColor {
		bar = progress.New(
			progress.WithGradient(theme.Colors.Primary, theme.Colors.Secondary),
			progress.WithWidth(barWidth),
		)
	}
	return progressModel{bar: bar, warn: theme.Warning(), title: title, total: total}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.current = min(m.current+1, m.total)
		if msg.failed {
			m.failed++
		}
	case titleMsg:
		m.title = string(msg)
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}
	line := fmt.Sprintf("%s [%d/%d] %s", m.bar.ViewAs(pct), m.current, m.total, m.title)
	if m.failed > 0 {
		line += " " + m.warn.Render(fmt.Sprintf("(%d failed)", m.failed))
	}
	return line + "\n"
}

type animatedProgressBar struct {
	runner *runner
}

func (b *animatedProgressBar) SetTitle(title string) { b.runner.send(titleMsg(title)) }
func (b *animatedProgressBar) Step(failed bool)      { b.runner.send(stepMsg{failed: failed}) }
func (b *animatedProgressBar) Done()                 { b.runner.stop() }

// lineProgressBar prints one counter line per finished item and a closing
// line carrying the failure count.
type lineProgressBar struct {
	theme   *Theme
	writer  io.Writer
	label   string
	title   string
	current int
	total   int
	failed  int
	done    bool
}

func (b *lineProgressBar) SetTitle(title string) {
	b.title = title
}

func (b *lineProgressBar) Step(failed bool) {
	b.current = min(b.current+1, b.total)
	line := b.title
	if failed {
		b.failed++
		line += " " + b.theme.Error().Render("failed")
	}
	b.print(line)
}

func (b *lineProgressBar) Done() {
	if b.done {
		return
	}
	b.done = true
	line := b.label + " done"
	if b.failed > 0 {
		line += fmt.Sprintf(", %d failed", b.failed)
	}
	b.print(line)
}

func (b *lineProgressBar) print(line string) {
	counter := b.theme.Muted().Render(fmt.Sprintf("[%d/%d]", b.current, b.total))
	_, _ = fmt.Fprintf(b.writer, "%s %s\n", counter, line)
}
