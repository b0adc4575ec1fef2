package ui

// Progress creates progress indicators for long-running operations.
type Progress interface {
	// Start creates a determinate progress bar with the given total.
	Start(title string, total int) ProgressBar
	// Spinner creates an indeterminate spinner.
	Spinner(title string) Spinner
}

// ProgressBar tracks a batch of repositories or rules.
type ProgressBar interface {
	// SetTitle names the item being worked on.
	SetTitle(title string)
	// Step finishes the current item. Failed items are counted separately.
	Step(failed bool)
	// Done closes the bar. Later calls do nothing.
	Done()
}

// Spinner shows an indeterminate operation.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// ThemeConfig selects the colour mode of a Theme.
type ThemeConfig struct {
	// Mode is "dark", "light" or "" for terminal detection.
	Mode    string
	NoColor bool
}
