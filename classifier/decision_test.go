package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/triage"
)

func TestDecisionFromCallReply(t *testing.T) {
	action, err := decisionFromCall(actionReply, map[string]any{
		"title":      "Invoice question",
		"summary":    "Asks about invoice 42",
		"priority":   "medium",
		"reply_body": "It has been paid.",
	})
	require.NoError(t, err)

	reply, ok := action.(*triage.ReplyAction)
	require.True(t, ok)
	assert.Equal(t, "Invoice question", reply.Title)
	assert.Equal(t, triage.PriorityMedium, reply.Priority)
	assert.Equal(t, "It has been paid.", reply.ReplyBody)
}

func TestDecisionFromCallReplyMissingBody(t *testing.T) {
	_, err := decisionFromCall(actionReply, map[string]any{
		"title":    "Invoice question",
		"summary":  "Asks about invoice 42",
		"priority": "low",
	})
	var incomplete *triage.IncompleteArgumentsError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "reply_body")
}

func TestDecisionFromCallSchedule(t *testing.T) {
	action, err := decisionFromCall(actionSchedule, map[string]any{
		"title":            "Meeting request",
		"summary":          "Wants to meet tomorrow",
		"priority":         "high",
		"date":             "2025-03-10",
		"time":             "15:00",
		"duration_minutes": float64(45),
		"attendees":        []any{"alice@x.com", "bob@y.com"},
	})
	require.NoError(t, err)

	sched, ok := action.(*triage.ScheduleAction)
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", sched.Date)
	assert.Equal(t, "15:00", sched.Time)
	assert.Equal(t, 45, sched.DurationMinutes)
	assert.Equal(t, []string{"alice@x.com", "bob@y.com"}, sched.Attendees)
	assert.Equal(t, triage.PriorityHigh, sched.Priority)
}

func TestDecisionFromCallScheduleMissingFields(t *testing.T) {
	_, err := decisionFromCall(actionSchedule, map[string]any{
		"title":    "Meeting request",
		"summary":  "Wants to meet",
		"priority": "high",
		"date":     "2025-03-10",
	})
	var incomplete *triage.IncompleteArgumentsError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "time")
	assert.Contains(t, incomplete.Missing, "duration_minutes")
	assert.Contains(t, incomplete.Missing, "attendees")
}

func TestDecisionFromCallScheduleStringDuration(t *testing.T) {
	action, err := decisionFromCall(actionSchedule, map[string]any{
		"title":            "Meeting request",
		"summary":          "Wants to meet",
		"priority":         "low",
		"date":             "2025-03-10",
		"time":             "15:00",
		"duration_minutes": "30",
		"attendees":        []any{"alice@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, action.(*triage.ScheduleAction).DurationMinutes)
}

func TestDecisionFromCallNoop(t *testing.T) {
	action, err := decisionFromCall(actionNoop, map[string]any{
		"title":     "Newsletter",
		"summary":   "Weekly digest",
		"priority":  "low",
		"confirmed": true,
	})
	require.NoError(t, err)

	noop, ok := action.(*triage.NoopAction)
	require.True(t, ok)
	assert.True(t, noop.Confirmed)
	assert.Equal(t, triage.PriorityLow, noop.Priority)
}

func TestDecisionFromCallUnknownName(t *testing.T) {
	_, err := decisionFromCall("delete_email", map[string]any{})
	var unknown *triage.UnknownActionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "delete_email", unknown.Name)
}

func TestDecisionFromCallUnrecognizedPriorityDefaultsLow(t *testing.T) {
	action, err := decisionFromCall(actionNoop, map[string]any{
		"title":    "Note",
		"summary":  "n/a",
		"priority": "urgent",
	})
	require.NoError(t, err)
	assert.Equal(t, triage.PriorityLow, action.(*triage.NoopAction).Priority)
}

func TestDraftFromCall(t *testing.T) {
	draft, err := draftFromCall(actionReply, map[string]any{
		"reply_title": "Meeting Confirmed",
		"reply_body":  "See you at 15:00.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Meeting Confirmed", draft.Title)
	assert.Equal(t, "See you at 15:00.", draft.Body)
}

func TestDraftFromCallWrongName(t *testing.T) {
	_, err := draftFromCall(actionSchedule, map[string]any{})
	assert.ErrorIs(t, err, triage.ErrComposer)
}

func TestDraftFromCallMissingFields(t *testing.T) {
	_, err := draftFromCall(actionReply, map[string]any{"reply_title": "Confirmed"})
	assert.ErrorIs(t, err, triage.ErrComposer)
}
