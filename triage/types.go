package triage

import (
	"strings"
	"time"
)

// Priority of an email or of the action taken for it.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority normalizes a free-form priority string. Anything
// unrecognized is treated as low.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// User is the account a triage run acts on behalf of.
type User struct {
	ID    int64
	Email string
	Name  string
}

// Message is a normalized inbound email. It is immutable once fetched;
// the run that fetched it is its only owner.
type Message struct {
	ID            string
	ThreadID      string
	SenderAddress string
	SenderName    string
	Body          string
	PriorityHint  Priority
}

// MeetingEvent is the provider-independent event the scheduler builds.
// Start/End form a half-open interval in the configured time zone.
type MeetingEvent struct {
	Summary             string
	Location            string
	Start               time.Time
	End                 time.Time
	Attendees           []string
	ConferenceRequestID string
}

// CreatedEvent is what the calendar capability reports back after a
// successful insert.
type CreatedEvent struct {
	ID          string
	MeetingLink string
}

// ReplyDraft is the confirmation composer's output.
type ReplyDraft struct {
	Title string
	Body  string
}

// HistoryRecord is the durable fact appended once per successfully
// processed message. It doubles as the audit trail and the idempotency
// ledger; it is never mutated after the append.
type HistoryRecord struct {
	UserID           int64
	SenderAddress    string
	SenderName       string
	ReceiverAddress  string
	HistoryWatermark string
	Date             time.Time
	Title            string
	Summary          string
	Priority         Priority
	Read             bool
}
