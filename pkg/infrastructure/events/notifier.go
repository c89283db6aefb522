package events

import (
	"fmt"
	"io"
	"sync"

	"github.com/vsinha/bomplanner/pkg/logger"
)

// Severity of a user notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a message shown to the user
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Notifier is a fire-and-forget sink for user notifications
type Notifier interface {
	Notify(severity Severity, message string)
}

// LogNotifier writes notifications to the default logger
type LogNotifier struct{}

func (LogNotifier) Notify(severity Severity, message string) {
	if severity == SeverityError {
		logger.Warn(message)
		return
	}
	logger.Info(message)
}

// NopNotifier drops every notification
type NopNotifier struct{}

func (NopNotifier) Notify(Severity, string) {}

// WriterNotifier prints notifications for a terminal user
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(severity Severity, message string) {
	icon := "✅"
	if severity == SeverityError {
		icon = "❌"
	}
	fmt.Fprintf(n.W, "%s %s\n", icon, message)
}

// StoreNotifier appends notifications to an event store
type StoreNotifier struct {
	store EventStore
}

func NewStoreNotifier(store EventStore) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (n *StoreNotifier) Notify(severity Severity, message string) {
	event := NewEvent(NotificationEvent, NotificationStream, Notification{Severity: severity, Message: message})
	if err := n.store.AppendEvent(NotificationStream, event); err != nil {
		logger.Warn("dropping notification", "message", message, "error", err)
	}
}

// MultiNotifier fans a notification out to several sinks
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(severity Severity, message string) {
	for _, n := range m {
		n.Notify(severity, message)
	}
}

// RecordingNotifier keeps notifications in memory
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *RecordingNotifier) Notify(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Severity: severity, Message: message})
}

// Notifications returns a copy of everything recorded so far
func (r *RecordingNotifier) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Last returns the most recent notification
func (r *RecordingNotifier) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}
