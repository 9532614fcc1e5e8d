// Package classifier implements the reasoning capability on Gemini.
// Sampling is deterministic (temperature 0) so the same message tends to
// produce the same decision.
package classifier

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/taskpilot/taskpilot/triage"
)

const (
	actionReply    = "generate_reply"
	actionSchedule = "schedule_meeting"
	actionNoop     = "no_action_required"
)

// Client wraps a shared Gemini client. It is constructor-injected into the
// orchestrator rather than held as process-wide state.
type Client struct {
	genai *genai.Client
	model string
}

func New(client *genai.Client, model string) *Client {
	return &Client{genai: client, model: model}
}

// Classify runs the triage round: the message body, today's date, and the
// three action schemas, expecting exactly one function call back.
func (c *Client) Classify(ctx context.Context, msg *triage.Message, today time.Time) (triage.Action, error) {
	prompt := triagePrompt(msg, today)
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		Tools:       triageTools(),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	call, err := singleFunctionCall(resp)
	if err != nil {
		return nil, err
	}
	return decisionFromCall(call.Name, call.Args)
}

// ComposeConfirmation runs the narrower second round after a successful
// schedule. It must return a generate_reply call; anything else is a
// composer failure for this sub-step.
func (c *Client) ComposeConfirmation(ctx context.Context, msg *triage.Message, meetingLink string, start, end time.Time) (*triage.ReplyDraft, error) {
	prompt := composerPrompt(msg, meetingLink, start, end)
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		Tools:       composerTools(),
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	call, err := singleFunctionCall(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", triage.ErrComposer, err)
	}
	return draftFromCall(call.Name, call.Args)
}

// singleFunctionCall enforces the response contract: one candidate with
// one function call. No candidates at all is a missing response; a
// candidate without a function call is a missing decision.
func singleFunctionCall(resp *genai.GenerateContentResponse) (*genai.FunctionCall, error) {
	if len(resp.Candidates) == 0 {
		return nil, triage.ErrNoResponse
	}
	if content := resp.Candidates[0].Content; content != nil {
		for _, part := range content.Parts {
			if part.FunctionCall != nil {
				return part.FunctionCall, nil
			}
		}
	}
	return nil, triage.ErrNoDecision
}

func triagePrompt(msg *triage.Message, today time.Time) string {
	sender := msg.SenderName
	if sender == "" {
		sender = msg.SenderAddress
	}
	return fmt.Sprintf(`You are an email triage assistant. Today's date is %s.

Read the email below and choose exactly one of the available functions:
- generate_reply when the email needs a written answer,
- schedule_meeting when the sender asks for a meeting (resolve relative
  dates like "tomorrow" against today's date; use YYYY-MM-DD dates and
  24-hour HH:MM times),
- no_action_required for everything else (newsletters, notifications,
  confirmations).

From: %s <%s>
Email body:
%s`, today.Format("Monday, 2 January 2006"), sender, msg.SenderAddress, msg.Body)
}

func composerPrompt(msg *triage.Message, meetingLink string, start, end time.Time) string {
	return fmt.Sprintf(`A meeting requested in the email below has been scheduled.

Meeting link: %s
Starts: %s
Ends: %s

Call generate_reply with a short confirmation email for the sender. It
must mention the meeting link and the start and end times.

Original email:
%s`, meetingLink, start.Format(time.RFC1123), end.Format(time.RFC1123), msg.Body)
}
