package triage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoResponse means the reasoning capability returned no candidates.
	ErrNoResponse = errors.New("classifier returned no response")
	// ErrNoDecision means a candidate was returned but carried no function call.
	ErrNoDecision = errors.New("classifier response contains no function call")
	// ErrConflict is returned by calendar capabilities when the requested
	// slot double-books an existing event. It is an alternate outcome, not
	// an ordinary failure: the scheduler answers with a reschedule request.
	ErrConflict = errors.New("requested slot conflicts with an existing event")
	// ErrComposer means the confirmation composer round did not produce a
	// usable reply. The already-created calendar event is not unwound.
	ErrComposer = errors.New("composer did not return a reply")
)

// UnknownActionError reports a function call whose name matches none of
// the three offered action schemas.
type UnknownActionError struct {
	Name string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Name)
}

// IncompleteArgumentsError reports a function call missing required
// fields for its chosen variant.
type IncompleteArgumentsError struct {
	Action  string
	Missing []string
}

func (e *IncompleteArgumentsError) Error() string {
	return fmt.Sprintf("action %q missing required arguments: %s", e.Action, strings.Join(e.Missing, ", "))
}
