// Package triage turns one unread email into exactly one of three actions:
// an automated reply, a scheduled meeting, or a recorded no-op. The state
// machine per message is Fetched -> Classified -> {Replied|Scheduled|Skipped}
// -> Recorded; any failing step terminates the run without a history record.
package triage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/taskpilot/taskpilot/metrics"
)

// Outcome is the terminal state of a triage run.
type Outcome string

const (
	// OutcomeNoMessage means no unread message remained by fetch time.
	OutcomeNoMessage Outcome = "no_message"
	// OutcomeRecorded means an action was dispatched and its history
	// record appended.
	OutcomeRecorded Outcome = "recorded"
	// OutcomeConflictNotified means the requested slot was double-booked;
	// the sender was asked for alternatives and no record was appended.
	OutcomeConflictNotified Outcome = "conflict_notified"
	// OutcomeFailed means a step errored out; no record was appended.
	OutcomeFailed Outcome = "failed"
)

// Service is the per-run orchestrator. All capabilities are bound to a
// single user; runs for different users never share a Service.
type Service struct {
	user       User
	mailbox    Mailbox
	calendar   Calendar
	classifier Classifier
	history    HistoryStore
	loc        *time.Location

	now func() time.Time
}

// NewService wires one triage run's capabilities. loc is the fixed zone
// all meeting times are interpreted in.
func NewService(user User, mailbox Mailbox, cal Calendar, cls Classifier, history HistoryStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		user:       user,
		mailbox:    mailbox,
		calendar:   cal,
		classifier: cls,
		history:    history,
		loc:        loc,
		now:        time.Now,
	}
}

// Run executes one fetch -> classify -> dispatch -> record cycle for the
// user. watermark is the provider's opaque history cursor for the
// triggering event and is stored verbatim on the history record. All
// steps are strictly sequential; there are no internal retries.
func (s *Service) Run(ctx context.Context, watermark string) (Outcome, error) {
	msg, err := s.mailbox.FetchLatestUnread(ctx)
	if err != nil {
		metrics.Failures.WithLabelValues("fetch").Inc()
		return OutcomeFailed, fmt.Errorf("fetch: %w", err)
	}
	if msg == nil {
		return OutcomeNoMessage, nil
	}

	action, err := s.classifier.Classify(ctx, msg, s.now().In(s.loc))
	if err != nil {
		// No record is appended: the unread-label mutation already
		// happened, so the message will not be reselected, but we
		// prefer losing the record to fabricating a partial one.
		metrics.Failures.WithLabelValues("classify").Inc()
		log.Printf("Triage: classification failed for message %s (user %s): %v", msg.ID, s.user.Email, err)
		return OutcomeFailed, fmt.Errorf("classify message %s: %w", msg.ID, err)
	}

	return s.dispatch(ctx, msg, action, watermark)
}

// dispatch maps the decision union onto its handler and appends the
// terminal history record. At most one action is processed per message.
func (s *Service) dispatch(ctx context.Context, msg *Message, action Action, watermark string) (Outcome, error) {
	switch a := action.(type) {
	case *ReplyAction:
		metrics.Actions.WithLabelValues("generate_reply").Inc()
		// Best-effort: a failed send is logged, not propagated, and the
		// record is appended regardless.
		if err := s.sendReply(ctx, msg, a.Title, a.ReplyBody); err != nil {
			metrics.Failures.WithLabelValues("send").Inc()
			log.Printf("Triage: reply send failed for message %s (user %s): %v", msg.ID, s.user.Email, err)
		}
		return s.record(ctx, msg, a.Title, a.Summary, a.Priority, watermark, true)

	case *ScheduleAction:
		metrics.Actions.WithLabelValues("schedule_meeting").Inc()
		conflicted, err := s.scheduleMeeting(ctx, msg, a)
		if err != nil {
			return OutcomeFailed, err
		}
		if conflicted {
			return OutcomeConflictNotified, nil
		}
		return s.record(ctx, msg, a.Title, a.Summary, a.Priority, watermark, true)

	case *NoopAction:
		metrics.Actions.WithLabelValues("no_action_required").Inc()
		return s.record(ctx, msg, a.Title, a.Summary, a.Priority, watermark, false)

	default:
		return OutcomeFailed, &UnknownActionError{Name: fmt.Sprintf("%T", action)}
	}
}

// sendReply threads a reply under the source conversation. The subject is
// always the classifier-chosen title prefixed with "Re: ".
func (s *Service) sendReply(ctx context.Context, msg *Message, title, body string) error {
	return s.mailbox.SendReply(ctx, msg.SenderAddress, "Re: "+title, body, msg.ThreadID)
}

// record appends the single terminal history record for the message.
func (s *Service) record(ctx context.Context, msg *Message, title, summary string, priority Priority, watermark string, read bool) (Outcome, error) {
	rec := &HistoryRecord{
		UserID:           s.user.ID,
		SenderAddress:    msg.SenderAddress,
		SenderName:       msg.SenderName,
		ReceiverAddress:  s.user.Email,
		HistoryWatermark: watermark,
		Date:             s.now().In(s.loc),
		Title:            title,
		Summary:          summary,
		Priority:         priority,
		Read:             read,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		// The side effect already happened; there is no idempotency key
		// to safely re-run it, so surface the error and stop.
		metrics.Failures.WithLabelValues("record").Inc()
		return OutcomeFailed, fmt.Errorf("record message %s: %w", msg.ID, err)
	}
	return OutcomeRecorded, nil
}

// scheduleMeeting runs the meeting sub-protocol. It reports conflicted=true
// when the slot was double-booked and the reschedule request was sent.
func (s *Service) scheduleMeeting(ctx context.Context, msg *Message, a *ScheduleAction) (bool, error) {
	if missing := a.missingFields(); len(missing) > 0 {
		return false, &IncompleteArgumentsError{Action: "schedule_meeting", Missing: missing}
	}

	start, err := ParseMeetingStart(a.Date, a.Time, s.loc)
	if err != nil {
		return false, fmt.Errorf("parse meeting time %q %q: %w", a.Date, a.Time, err)
	}
	end := start.Add(time.Duration(a.DurationMinutes) * time.Minute)

	ev := NewMeetingEvent(start, end, a.Attendees)
	created, err := s.calendar.CreateEvent(ctx, ev)
	if errors.Is(err, ErrConflict) {
		log.Printf("Triage: slot %s-%s conflicts for user %s, sending reschedule request", start.Format(time.RFC3339), end.Format(time.RFC3339), s.user.Email)
		if sendErr := s.sendReply(ctx, msg, rescheduleTitle, s.rescheduleBody(msg)); sendErr != nil {
			metrics.Failures.WithLabelValues("send").Inc()
			log.Printf("Triage: reschedule notice send failed for message %s: %v", msg.ID, sendErr)
		}
		return true, nil
	}
	if err != nil {
		metrics.Failures.WithLabelValues("schedule").Inc()
		return false, fmt.Errorf("create event: %w", err)
	}

	link := created.MeetingLink
	if link == "" {
		link = "No meeting link available"
	}

	// Second classifier round: draft the confirmation referencing the
	// link and the interval. A failure here is logged and swallowed; the
	// calendar event is already created and is not unwound.
	draft, err := s.classifier.ComposeConfirmation(ctx, msg, link, start, end)
	if err != nil {
		metrics.Failures.WithLabelValues("compose").Inc()
		log.Printf("Triage: confirmation compose failed for message %s (user %s): %v", msg.ID, s.user.Email, err)
		return false, nil
	}
	if err := s.sendReply(ctx, msg, draft.Title, draft.Body); err != nil {
		metrics.Failures.WithLabelValues("send").Inc()
		log.Printf("Triage: confirmation send failed for message %s (user %s): %v", msg.ID, s.user.Email, err)
	}
	return false, nil
}
