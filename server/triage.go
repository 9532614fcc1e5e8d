package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"

	"github.com/taskpilot/taskpilot/classifier"
	"github.com/taskpilot/taskpilot/gcal"
	"github.com/taskpilot/taskpilot/gmail"
	"github.com/taskpilot/taskpilot/metrics"
	"github.com/taskpilot/taskpilot/store"
	"github.com/taskpilot/taskpilot/triage"
)

// runTriage executes one triage run for the user: it builds the per-user
// capability handles, refreshes the stored credentials if needed, and
// hands off to the orchestrator. Runs for different users are independent;
// runs for the same user do not serialize the token write-back.
func (s *Server) runTriage(ctx context.Context, u *store.User, watermark string) (triage.Outcome, error) {
	ts, err := s.userTokenSource(ctx, u)
	if err != nil {
		metrics.TriageRuns.WithLabelValues(string(triage.OutcomeFailed)).Inc()
		return triage.OutcomeFailed, err
	}

	mbox, err := gmail.NewClient(ctx, ts)
	if err != nil {
		metrics.TriageRuns.WithLabelValues(string(triage.OutcomeFailed)).Inc()
		return triage.OutcomeFailed, fmt.Errorf("gmail client for %s: %w", u.Email, err)
	}
	cal, err := gcal.NewClient(ctx, ts, s.cfg.Timezone)
	if err != nil {
		metrics.TriageRuns.WithLabelValues(string(triage.OutcomeFailed)).Inc()
		return triage.OutcomeFailed, fmt.Errorf("calendar client for %s: %w", u.Email, err)
	}

	svc := triage.NewService(
		triage.User{ID: u.ID, Email: u.Email, Name: u.Name},
		mbox,
		cal,
		classifier.New(s.genai, s.cfg.GeminiModel),
		s.history,
		s.cfg.Timezone,
	)

	outcome, err := svc.Run(ctx, watermark)
	metrics.TriageRuns.WithLabelValues(string(outcome)).Inc()
	return outcome, err
}

// userTokenSource rebuilds an OAuth token source from the stored
// credentials. The stored token carries no expiry, so it is treated as
// stale and refreshed up front; the fresh access token is written back
// immediately so the run's side effects rest on durable credentials.
func (s *Server) userTokenSource(ctx context.Context, u *store.User) (oauth2.TokenSource, error) {
	conf := s.oauthConfig()
	stored := &oauth2.Token{
		AccessToken:  u.AccessToken,
		RefreshToken: u.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	ts := conf.TokenSource(ctx, stored)
	fresh, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh credentials for %s: %w", u.Email, err)
	}
	if fresh.AccessToken != u.AccessToken {
		if err := s.users.UpdateAccessToken(ctx, u.ID, fresh.AccessToken); err != nil {
			log.Printf("Triage: token write-back failed for %s: %v", u.Email, err)
		}
	}
	return oauth2.ReuseTokenSource(fresh, ts), nil
}

// watchMailbox registers the Gmail push watch on the user's mailbox and
// returns the mailbox's current history watermark.
func (s *Server) watchMailbox(ctx context.Context, ts oauth2.TokenSource) (string, error) {
	mbox, err := gmail.NewClient(ctx, ts)
	if err != nil {
		return "", err
	}
	return mbox.Watch(ctx, s.cfg.Topic())
}

// RegisterWatches re-registers the Gmail push watch for every stored user.
// Watches expire after roughly a week, so this runs at every boot.
func (s *Server) RegisterWatches(ctx context.Context) {
	users, err := s.users.All(ctx)
	if err != nil {
		log.Printf("Watch: unable to list users: %v", err)
		return
	}
	for i := range users {
		u := &users[i]
		ts, err := s.userTokenSource(ctx, u)
		if err != nil {
			log.Printf("Watch: credentials unavailable for %s: %v", u.Email, err)
			continue
		}
		watermark, err := s.registerWatch(ctx, ts)
		if err != nil {
			log.Printf("Watch: registration failed for %s: %v", u.Email, err)
			continue
		}
		if u.HistoryID == "" {
			if err := s.users.SetHistoryID(ctx, u.ID, watermark); err != nil {
				log.Printf("Watch: watermark init failed for %s: %v", u.Email, err)
			}
		}
		log.Printf("Watch: registered for %s", u.Email)
	}
}
