package triage

// Action is the classifier's sole output contract: a closed union over the
// three things the orchestrator can do with a message. Exactly one variant
// is produced per message; the dispatcher matches it exhaustively.
type Action interface {
	isAction()
}

// ReplyAction asks the orchestrator to send an automated reply.
type ReplyAction struct {
	Title     string
	Summary   string
	Priority  Priority
	ReplyBody string
}

// ScheduleAction asks the orchestrator to create a calendar meeting.
// Date and Time are calendar-naive strings as produced by the classifier
// and still require normalization.
type ScheduleAction struct {
	Title           string
	Summary         string
	Priority        Priority
	Date            string
	Time            string
	DurationMinutes int
	Attendees       []string
}

// NoopAction records the message without any external side effect.
type NoopAction struct {
	Title     string
	Summary   string
	Priority  Priority
	Confirmed bool
}

func (ReplyAction) isAction()    {}
func (ScheduleAction) isAction() {}
func (NoopAction) isAction()     {}

// missingFields reports which of the four required scheduling arguments
// are absent. Enforced upstream by the classifier and re-checked by the
// scheduler as a defensive invariant.
func (a *ScheduleAction) missingFields() []string {
	var missing []string
	if a.Date == "" {
		missing = append(missing, "date")
	}
	if a.Time == "" {
		missing = append(missing, "time")
	}
	if a.DurationMinutes <= 0 {
		missing = append(missing, "duration_minutes")
	}
	if len(a.Attendees) == 0 {
		missing = append(missing, "attendees")
	}
	return missing
}
