package gmail

import (
	"encoding/base64"
	"log"
	"net/mail"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/taskpilot/taskpilot/triage"
)

const decodeFailureBody = "(message body could not be decoded)"

// parseMessage normalizes a full Gmail message into the triage model.
func parseMessage(msg *gmail.Message) *triage.Message {
	out := &triage.Message{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		PriorityHint: triage.PriorityLow,
	}
	if msg.Payload == nil {
		return out
	}
	var xPriority, importance string
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			out.SenderName, out.SenderAddress = parseSender(h.Value)
		case "X-Priority":
			xPriority = h.Value
		case "Importance":
			importance = h.Value
		}
	}
	out.PriorityHint = priorityHint(xPriority, importance)
	out.Body = extractBody(msg.Payload)
	return out
}

// priorityHint folds the priority headers into a single hint. Importance
// wins over X-Priority regardless of header order: a sender that marks a
// message important should never be downgraded by a normal X-Priority.
func priorityHint(xPriority, importance string) triage.Priority {
	if strings.EqualFold(importance, "high") {
		return triage.PriorityHigh
	}
	// 1-2 are high, 3 is normal in the de-facto convention.
	switch {
	case strings.HasPrefix(xPriority, "1"), strings.HasPrefix(xPriority, "2"):
		return triage.PriorityHigh
	case strings.HasPrefix(xPriority, "3"):
		return triage.PriorityMedium
	}
	return triage.PriorityLow
}

// parseSender splits a "Name <addr>" header. Without an angle-bracket form
// the whole value is the address and the display name stays empty.
func parseSender(value string) (name, address string) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return "", strings.TrimSpace(value)
	}
	return addr.Name, addr.Address
}

// extractBody prefers a text/plain part and falls back to text/html.
func extractBody(payload *gmail.MessagePart) string {
	if data := findPartData(payload, "text/plain"); data != "" {
		return decodeBody(data)
	}
	if data := findPartData(payload, "text/html"); data != "" {
		return decodeBody(data)
	}
	return ""
}

// findPartData walks the MIME tree depth-first for the first part of the
// wanted type that carries data.
func findPartData(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if strings.EqualFold(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		return part.Body.Data
	}
	for _, p := range part.Parts {
		if strings.HasPrefix(strings.ToLower(p.MimeType), "text/") ||
			strings.HasPrefix(strings.ToLower(p.MimeType), "multipart/") {
			if data := findPartData(p, mimeType); data != "" {
				return data
			}
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body encoding. A decode failure
// yields an inline diagnostic instead of an error.
func decodeBody(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		b, err = base64.RawURLEncoding.DecodeString(data)
	}
	if err != nil {
		log.Printf("Gmail: error decoding base64 body: %v", err)
		return decodeFailureBody
	}
	return string(b)
}
