package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/taskpilot/taskpilot/triage"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestParseSender(t *testing.T) {
	name, addr := parseSender("Alice Example <alice@x.com>")
	assert.Equal(t, "Alice Example", name)
	assert.Equal(t, "alice@x.com", addr)

	name, addr = parseSender("alice@x.com")
	assert.Equal(t, "", name)
	assert.Equal(t, "alice@x.com", addr)
}

func TestParseMessagePrefersPlainText(t *testing.T) {
	msg := &gmail.Message{
		Id:       "m1",
		ThreadId: "t1",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Alice <alice@x.com>"},
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>hi</p>")}},
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("hi")}},
			},
		},
	}
	parsed := parseMessage(msg)
	assert.Equal(t, "m1", parsed.ID)
	assert.Equal(t, "t1", parsed.ThreadID)
	assert.Equal(t, "Alice", parsed.SenderName)
	assert.Equal(t, "alice@x.com", parsed.SenderAddress)
	assert.Equal(t, "hi", parsed.Body)
	assert.Equal(t, triage.PriorityLow, parsed.PriorityHint)
}

func TestParseMessageFallsBackToHTML(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>hi</p>")}},
			},
		},
	}
	assert.Equal(t, "<p>hi</p>", parseMessage(msg).Body)
}

func TestParseMessageNestedParts(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("nested")}},
					},
				},
			},
		},
	}
	assert.Equal(t, "nested", parseMessage(msg).Body)
}

func TestDecodeBodyFailureYieldsDiagnostic(t *testing.T) {
	assert.Equal(t, decodeFailureBody, decodeBody("%%% not base64 %%%"))
}

func TestParseMessagePriorityHeaders(t *testing.T) {
	build := func(headers ...*gmail.MessagePartHeader) *gmail.Message {
		return &gmail.Message{Payload: &gmail.MessagePart{Headers: headers}}
	}

	high := build(&gmail.MessagePartHeader{Name: "X-Priority", Value: "1 (Highest)"})
	assert.Equal(t, triage.PriorityHigh, parseMessage(high).PriorityHint)

	medium := build(&gmail.MessagePartHeader{Name: "X-Priority", Value: "3"})
	assert.Equal(t, triage.PriorityMedium, parseMessage(medium).PriorityHint)

	important := build(&gmail.MessagePartHeader{Name: "Importance", Value: "High"})
	assert.Equal(t, triage.PriorityHigh, parseMessage(important).PriorityHint)

	plain := build(&gmail.MessagePartHeader{Name: "From", Value: "a@x.com"})
	assert.Equal(t, triage.PriorityLow, parseMessage(plain).PriorityHint)

	// Importance beats X-Priority in either header order.
	mixed := build(
		&gmail.MessagePartHeader{Name: "Importance", Value: "High"},
		&gmail.MessagePartHeader{Name: "X-Priority", Value: "3"},
	)
	assert.Equal(t, triage.PriorityHigh, parseMessage(mixed).PriorityHint)

	mixed = build(
		&gmail.MessagePartHeader{Name: "X-Priority", Value: "3"},
		&gmail.MessagePartHeader{Name: "Importance", Value: "High"},
	)
	assert.Equal(t, triage.PriorityHigh, parseMessage(mixed).PriorityHint)
}

func TestPickLatestUnread(t *testing.T) {
	msgs := []*gmail.Message{
		{Id: "old-unread", InternalDate: 100, LabelIds: []string{"INBOX", unreadLabel}},
		{Id: "new-read", InternalDate: 300, LabelIds: []string{"INBOX"}},
		{Id: "mid-unread", InternalDate: 200, LabelIds: []string{"INBOX", unreadLabel}},
	}
	selected := pickLatestUnread(msgs)
	require.NotNil(t, selected)
	// Newest overall lost its unread label between list and fetch; the
	// next-newest still-unread message wins.
	assert.Equal(t, "mid-unread", selected.Id)
}

func TestPickLatestUnreadAllRead(t *testing.T) {
	msgs := []*gmail.Message{
		{Id: "a", InternalDate: 100, LabelIds: []string{"INBOX"}},
		{Id: "b", InternalDate: 200, LabelIds: []string{"INBOX"}},
	}
	assert.Nil(t, pickLatestUnread(msgs))
	assert.Nil(t, pickLatestUnread(nil))
}

func TestBuildRaw(t *testing.T) {
	raw := buildRaw("alice@x.com", "Re: Hello", "Body text")
	assert.Equal(t, "To: alice@x.com\r\nSubject: Re: Hello\r\n\r\nBody text", string(raw))

	decoded, err := base64.URLEncoding.DecodeString(base64.URLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}
