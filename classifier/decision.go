package classifier

import (
	"fmt"
	"strconv"

	"github.com/taskpilot/taskpilot/triage"
)

// decisionFromCall maps a function call 1:1 into the action union. The
// name is matched against the closed set of offered schemas; anything
// else is a typed UnknownAction error, never a silent no-op.
func decisionFromCall(name string, args map[string]any) (triage.Action, error) {
	switch name {
	case actionReply:
		missing := missingStrings(args, "title", "reply_body")
		if len(missing) > 0 {
			return nil, &triage.IncompleteArgumentsError{Action: name, Missing: missing}
		}
		return &triage.ReplyAction{
			Title:     strArg(args, "title"),
			Summary:   strArg(args, "summary"),
			Priority:  triage.ParsePriority(strArg(args, "priority")),
			ReplyBody: strArg(args, "reply_body"),
		}, nil

	case actionSchedule:
		missing := missingStrings(args, "title", "date", "time")
		if intArg(args, "duration_minutes") <= 0 {
			missing = append(missing, "duration_minutes")
		}
		attendees := strSliceArg(args, "attendees")
		if len(attendees) == 0 {
			missing = append(missing, "attendees")
		}
		if len(missing) > 0 {
			return nil, &triage.IncompleteArgumentsError{Action: name, Missing: missing}
		}
		return &triage.ScheduleAction{
			Title:           strArg(args, "title"),
			Summary:         strArg(args, "summary"),
			Priority:        triage.ParsePriority(strArg(args, "priority")),
			Date:            strArg(args, "date"),
			Time:            strArg(args, "time"),
			DurationMinutes: intArg(args, "duration_minutes"),
			Attendees:       attendees,
		}, nil

	case actionNoop:
		missing := missingStrings(args, "title")
		if len(missing) > 0 {
			return nil, &triage.IncompleteArgumentsError{Action: name, Missing: missing}
		}
		return &triage.NoopAction{
			Title:     strArg(args, "title"),
			Summary:   strArg(args, "summary"),
			Priority:  triage.ParsePriority(strArg(args, "priority")),
			Confirmed: boolArg(args, "confirmed"),
		}, nil

	default:
		return nil, &triage.UnknownActionError{Name: name}
	}
}

// draftFromCall maps the composer round's call into a reply draft.
func draftFromCall(name string, args map[string]any) (*triage.ReplyDraft, error) {
	if name != actionReply {
		return nil, fmt.Errorf("%w: unexpected call %q", triage.ErrComposer, name)
	}
	title := strArg(args, "reply_title")
	body := strArg(args, "reply_body")
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: reply_title or reply_body missing", triage.ErrComposer)
	}
	return &triage.ReplyDraft{Title: title, Body: body}, nil
}

func missingStrings(args map[string]any, keys ...string) []string {
	var missing []string
	for _, k := range keys {
		if strArg(args, k) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

func strArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg tolerates the numeric encodings JSON decoding can hand back.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func boolArg(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func strSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
