package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

const rescheduleTitle = "Meeting Reschedule - Please Suggest a New Time"

// ParseMeetingStart turns the classifier's calendar-naive date and time
// strings into an absolute timestamp in the given zone. Parsing is lenient
// about formats but the result must carry both a date and a clock time.
func ParseMeetingStart(date, clock string, loc *time.Location) (time.Time, error) {
	raw := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date/time")
	}
	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// NewMeetingEvent builds the provider-independent event for one scheduling
// attempt. The conference request id is fresh per attempt so that
// conference-link creation stays idempotent on the provider side.
func NewMeetingEvent(start, end time.Time, attendees []string) *MeetingEvent {
	return &MeetingEvent{
		Summary:             "Meeting with " + strings.Join(attendees, ", "),
		Location:            "Virtual Meeting",
		Start:               start,
		End:                 end,
		Attendees:           attendees,
		ConferenceRequestID: uuid.NewString(),
	}
}

// rescheduleBody is the fixed notice sent when the requested slot is
// double-booked, asking the original sender to propose alternatives.
func (s *Service) rescheduleBody(msg *Message) string {
	name := msg.SenderName
	if name == "" {
		name = msg.SenderAddress
	}
	return fmt.Sprintf(`Dear %s,

I attempted to schedule the meeting at the requested time, but encountered a scheduling conflict.

To find a time that works best for you, could you please reply to this email with a few alternative dates and times that are convenient?

I apologize for any inconvenience this may cause, and I look forward to finding a new time that suits your schedule.

Sincerely,

%s
`, name, s.user.Name)
}
