// Package gcal implements the calendar capability on the Google Calendar API.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/taskpilot/taskpilot/triage"
)

const primaryCalendar = "primary"

// Reminder overrides applied to every meeting: an email 10 minutes out
// and a popup 5 minutes out.
var reminderOverrides = []*calendar.EventReminder{
	{Method: "email", Minutes: 10},
	{Method: "popup", Minutes: 5},
}

// Client is a per-user Calendar handle.
type Client struct {
	srv *calendar.Service
	loc *time.Location
}

func NewClient(ctx context.Context, ts oauth2.TokenSource, loc *time.Location) (*Client, error) {
	srv, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Client{srv: srv, loc: loc}, nil
}

// CreateEvent inserts the meeting with conference-data generation
// requested. It returns triage.ErrConflict when the interval overlaps an
// existing busy period; calendar inserts themselves never reject double
// bookings, so the free/busy probe runs first.
func (c *Client) CreateEvent(ctx context.Context, ev *triage.MeetingEvent) (*triage.CreatedEvent, error) {
	busy, err := c.busyWithin(ctx, ev.Start, ev.End)
	if err != nil {
		return nil, fmt.Errorf("free/busy query: %w", err)
	}
	if busy {
		return nil, triage.ErrConflict
	}

	attendees := make([]*calendar.EventAttendee, 0, len(ev.Attendees))
	for _, a := range ev.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: a})
	}

	event := &calendar.Event{
		Summary:  ev.Summary,
		Location: ev.Location,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		Attendees: attendees,
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: ev.ConferenceRequestID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       reminderOverrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := c.srv.Events.Insert(primaryCalendar, event).
		ConferenceDataVersion(1).
		Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusConflict {
			return nil, triage.ErrConflict
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}

	return &triage.CreatedEvent{
		ID:          created.Id,
		MeetingLink: meetingLink(created),
	}, nil
}

// busyWithin reports whether the primary calendar has any busy period
// overlapping the half-open interval [start, end).
func (c *Client) busyWithin(ctx context.Context, start, end time.Time) (bool, error) {
	resp, err := c.srv.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin:  start.Format(time.RFC3339),
		TimeMax:  end.Format(time.RFC3339),
		TimeZone: c.loc.String(),
		Items:    []*calendar.FreeBusyRequestItem{{Id: primaryCalendar}},
	}).Context(ctx).Do()
	if err != nil {
		return false, err
	}
	cal, ok := resp.Calendars[primaryCalendar]
	if !ok {
		return false, nil
	}
	return len(cal.Busy) > 0, nil
}

// meetingLink extracts the generated conference link, preferring the
// hangout link and falling back to the first video entry point.
func meetingLink(ev *calendar.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.Uri != "" {
				return ep.Uri
			}
		}
	}
	return ""
}
