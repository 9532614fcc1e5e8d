// Package gmail implements the mailbox capability on the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sort"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/taskpilot/taskpilot/triage"
)

const (
	user             = "me"
	unreadLabel      = "UNREAD"
	unreadFetchCount = 5
)

// Client is a per-user Gmail handle. The token source carries the user's
// OAuth credentials and refreshes them transparently.
type Client struct {
	srv *gmail.Service
}

func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	srv, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// FetchLatestUnread returns the newest message that is still unread at
// full-fetch time, with its UNREAD label cleared, or nil when none
// qualifies. Clearing the label is the single mutation that keeps a
// future poll from reselecting the same message; two concurrent readers
// for the same user can still race past each other (no per-message lock
// exists at this layer).
func (c *Client) FetchLatestUnread(ctx context.Context) (*triage.Message, error) {
	list, err := c.srv.Users.Messages.List(user).
		LabelIds(unreadLabel).
		MaxResults(unreadFetchCount).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}
	if len(list.Messages) == 0 {
		return nil, nil
	}

	full := make([]*gmail.Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg, err := c.srv.Users.Messages.Get(user, m.Id).Format("full").Context(ctx).Do()
		if err != nil {
			log.Printf("Gmail: unable to retrieve full message %s: %v", m.Id, err)
			continue
		}
		full = append(full, msg)
	}

	selected := pickLatestUnread(full)
	if selected == nil {
		// Lost the race: everything listed was read by someone else
		// between list and full fetch.
		return nil, nil
	}

	if _, err := c.srv.Users.Messages.Modify(user, selected.Id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{unreadLabel},
	}).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("clear unread label on %s: %w", selected.Id, err)
	}

	return parseMessage(selected), nil
}

// pickLatestUnread orders full messages by arrival timestamp descending and
// returns the first whose label set still contains UNREAD.
func pickLatestUnread(msgs []*gmail.Message) *gmail.Message {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].InternalDate > msgs[j].InternalDate
	})
	for _, m := range msgs {
		for _, l := range m.LabelIds {
			if l == unreadLabel {
				return m
			}
		}
	}
	return nil
}

// SendReply sends a minimal RFC-2822 message threaded under threadID.
func (c *Client) SendReply(ctx context.Context, to, subject, body, threadID string) error {
	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(buildRaw(to, subject, body)),
		ThreadId: threadID,
	}
	if _, err := c.srv.Users.Messages.Send(user, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send reply to %s: %w", to, err)
	}
	return nil
}

func buildRaw(to, subject, body string) []byte {
	return []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body)
}

// Watch registers the user's inbox for push notifications on the given
// Pub/Sub topic and returns the provider's current history watermark.
func (c *Client) Watch(ctx context.Context, topic string) (string, error) {
	resp, err := c.srv.Users.Watch(user, &gmail.WatchRequest{
		LabelIds:  []string{"INBOX"},
		TopicName: topic,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("register watch: %w", err)
	}
	return fmt.Sprintf("%d", resp.HistoryId), nil
}
