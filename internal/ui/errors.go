// Package ui provides the terminal presentation layer of rulesync: the
// rule picker, repository form, progress display, event notifier and rule
// rendering. Every component has a headless variant for non-TTY use.
package ui

import "errors"

var (
	// ErrCancelled indicates the user aborted an interactive prompt.
	ErrCancelled = errors.New("ui: cancelled by user")

	// ErrHeadlessNoSelection indicates a selection was needed but no
	// terminal is available to ask for one.
	ErrHeadlessNoSelection = errors.New("ui: selection required in headless mode")

	// ErrHeadlessNoDefaults indicates a form ran headless without the
	// defaults it needs.
	ErrHeadlessNoDefaults = errors.New("ui: headless mode requires defaults")

	// ErrNoItems indicates there was nothing to choose from.
	ErrNoItems = errors.New("ui: nothing to select")
)
