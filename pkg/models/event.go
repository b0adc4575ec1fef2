package models

// EventKind identifies a synchronization or installation event.
type EventKind string

const (
	EventSyncStarted   EventKind = "sync_started"
	EventCloned        EventKind = "cloned"
	EventUpdated       EventKind = "updated"
	EventSkipped       EventKind = "skipped"
	EventSyncFailed    EventKind = "sync_failed"
	EventRuleInstalled EventKind = "rule_installed"
	EventRuleFailed    EventKind = "rule_failed"
)

// Event is emitted while repositories are synchronized and rules installed.
// Rule is empty for repository events; Err is set only for failures.
type Event struct {
	Kind          EventKind
	RepositoryURL string
	Rule          string
	Err           error
}

// Failed reports whether the event describes a failure.
func (e Event) Failed() bool {
	return e.Kind == EventSyncFailed || e.Kind == EventRuleFailed
}

// Notifier receives events. Implementations must not block for long;
// batches call Notify inline between items.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// NopNotifier discards every event.
var NopNotifier Notifier = NotifierFunc(func(Event) {})
