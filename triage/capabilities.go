package triage

import (
	"context"
	"time"
)

// The capabilities below are the external collaborators the orchestrator
// depends on. They are constructor-injected so tests can substitute stubs.

// Mailbox is the mail provider surface the core needs.
type Mailbox interface {
	// FetchLatestUnread returns the newest still-unread message with its
	// unread marker already cleared, or nil when no unread message remains.
	FetchLatestUnread(ctx context.Context) (*Message, error)
	// SendReply sends an email threaded under the given conversation.
	SendReply(ctx context.Context, to, subject, body, threadID string) error
}

// Calendar creates meeting events. Implementations return ErrConflict
// when the requested interval double-books an existing event.
type Calendar interface {
	CreateEvent(ctx context.Context, ev *MeetingEvent) (*CreatedEvent, error)
}

// Classifier is the reasoning capability: one triage round per message,
// plus the narrower confirmation round used after a successful schedule.
type Classifier interface {
	Classify(ctx context.Context, msg *Message, today time.Time) (Action, error)
	ComposeConfirmation(ctx context.Context, msg *Message, meetingLink string, start, end time.Time) (*ReplyDraft, error)
}

// HistoryStore is write-only from the core's point of view.
type HistoryStore interface {
	Append(ctx context.Context, rec *HistoryRecord) error
}
