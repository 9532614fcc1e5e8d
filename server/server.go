// Package server exposes the HTTP surface: OAuth registration, the Gmail
// push webhook that triggers triage runs, and a small JWT-guarded read API.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"google.golang.org/genai"

	"github.com/taskpilot/taskpilot/config"
	"github.com/taskpilot/taskpilot/store"
	"github.com/taskpilot/taskpilot/triage"
)

// usersStore is the slice of the user repository the handlers use.
type usersStore interface {
	Upsert(ctx context.Context, u *store.User) (*store.User, error)
	GetByEmail(ctx context.Context, email string) (*store.User, error)
	All(ctx context.Context) ([]store.User, error)
	UpdateAccessToken(ctx context.Context, userID int64, accessToken string) error
	SetHistoryID(ctx context.Context, userID int64, historyID string) error
}

// historyStore is the slice of the history repository the handlers use.
type historyStore interface {
	Append(ctx context.Context, rec *triage.HistoryRecord) error
	ListByReceiver(ctx context.Context, receiver string, limit int) ([]store.Email, error)
}

// Server holds the shared collaborators every request handler needs.
// triageRun and registerWatch indirect the provider-facing paths.
type Server struct {
	cfg     *config.Config
	users   usersStore
	history historyStore
	genai   *genai.Client

	triageRun     func(ctx context.Context, u *store.User, watermark string) (triage.Outcome, error)
	registerWatch func(ctx context.Context, ts oauth2.TokenSource) (string, error)
}

func New(cfg *config.Config, users *store.Users, history *store.History, genaiClient *genai.Client) *Server {
	s := &Server{
		cfg:     cfg,
		users:   users,
		history: history,
		genai:   genaiClient,
	}
	s.triageRun = s.runTriage
	s.registerWatch = s.watchMailbox
	return s
}

// Router wires all routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodGet)
	r.HandleFunc("/auth/callback", s.handleCallback).Methods(http.MethodGet)
	r.HandleFunc("/redirect", s.handleRedirect).Methods(http.MethodGet)

	r.HandleFunc("/email-notification", s.handleNotification).Methods(http.MethodPost)
	r.HandleFunc("/test", s.handleTest).Methods(http.MethodPost)

	r.Handle("/emails", s.requireAuth(http.HandlerFunc(s.handleEmails))).Methods(http.MethodGet)
	r.Handle("/me", s.requireAuth(http.HandlerFunc(s.handleMe))).Methods(http.MethodGet)

	return r
}
