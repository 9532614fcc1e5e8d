package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/taskpilot/taskpilot/store"
	"github.com/taskpilot/taskpilot/triage"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Service running"))
}

// handleLogin redirects the browser to Google's consent screen.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	url := s.oauthConfig().AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	http.Redirect(w, r, url, http.StatusFound)
}

// handleCallback exchanges the authorization code, registers the user and
// their Gmail watch, and hands a session token back via /redirect.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	conf := s.oauthConfig()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		log.Printf("Auth: code exchange failed: %v", err)
		writeError(w, http.StatusBadGateway, "error exchanging authorization code")
		return
	}

	info, err := fetchUserinfo(ctx, conf, tok)
	if err != nil {
		log.Printf("Auth: userinfo fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "error getting user info")
		return
	}

	user, err := s.completeLogin(ctx, tok, info)
	if err != nil {
		log.Printf("Auth: user upsert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store user")
		return
	}

	session, err := s.createSessionToken(user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session token")
		return
	}
	http.Redirect(w, r, "/redirect?token="+session, http.StatusFound)
}

// completeLogin stores the user's credentials and registers the push
// watch right away so triage starts without waiting for the boot-time
// re-registration pass. The stored watermark gets a baseline only when
// the user has none yet; a re-login must not rewind triage progress.
func (s *Server) completeLogin(ctx context.Context, tok *oauth2.Token, info *userinfo) (*store.User, error) {
	idToken, _ := tok.Extra("id_token").(string)
	user := &store.User{
		Email:        info.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     "https://oauth2.googleapis.com/token",
		IDToken:      idToken,
		Name:         info.Name,
		GivenName:    info.GivenName,
		FamilyName:   info.FamilyName,
		Picture:      info.Picture,
		Locale:       info.Locale,
	}
	user, err := s.users.Upsert(ctx, user)
	if err != nil {
		return nil, err
	}

	watermark, err := s.registerWatch(ctx, s.oauthConfig().TokenSource(ctx, tok))
	if err != nil {
		log.Printf("Auth: watch registration failed for %s: %v", user.Email, err)
		return user, nil
	}
	if user.HistoryID == "" {
		if err := s.users.SetHistoryID(ctx, user.ID, watermark); err != nil {
			log.Printf("Auth: watermark init failed for %s: %v", user.Email, err)
		} else {
			user.HistoryID = watermark
		}
	}
	return user, nil
}

type userinfo struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Locale     string `json:"locale"`
}

func fetchUserinfo(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (*userinfo, error) {
	resp, err := conf.Client(ctx, tok).Get(userinfoEndpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}
	var info userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// handleRedirect serves the page that posts the session token to the
// browser extension.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "<h1>Error: Missing token</h1>")
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Processing...</title>
<script>
window.onload = function() {
	window.postMessage({ type: "FROM_PAGE", token: %q }, "*");
	document.body.innerHTML = "<h1>Token sent successfully!</h1>";
};
</script>
</head>
<body><h1>Processing...</h1></body>
</html>`, html.EscapeString(token))
}

// pushEnvelope is the Pub/Sub push wrapper around a Gmail notification.
type pushEnvelope struct {
	Message struct {
		Data string `json:"data"`
	} `json:"message"`
}

type gmailNotification struct {
	EmailAddress string      `json:"emailAddress"`
	HistoryID    json.Number `json:"historyId"`
}

// handleNotification runs one triage cycle for the notified user. It
// always answers 200: Gmail disables push delivery after repeated
// endpoint errors, so internal failures are logged, never surfaced.
func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var envelope pushEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		log.Printf("Webhook: undecodable envelope: %v", err)
		writeJSON(w, map[string]string{"error": "undecodable envelope"})
		return
	}
	raw, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		log.Printf("Webhook: undecodable message data: %v", err)
		writeJSON(w, map[string]string{"error": "undecodable message data"})
		return
	}
	var note gmailNotification
	if err := json.Unmarshal(raw, &note); err != nil {
		log.Printf("Webhook: undecodable notification: %v", err)
		writeJSON(w, map[string]string{"error": "undecodable notification"})
		return
	}

	log.Printf("Webhook: new mail for %s, history id %s", note.EmailAddress, note.HistoryID)

	user, err := s.users.GetByEmail(ctx, note.EmailAddress)
	if err != nil || user == nil {
		log.Printf("Webhook: unknown user %s: %v", note.EmailAddress, err)
		writeJSON(w, map[string]string{"message": "Notification received"})
		return
	}

	watermark := user.HistoryID
	if watermark == "" {
		watermark = note.HistoryID.String()
	}
	outcome, err := s.triageRun(ctx, user, watermark)
	if err != nil {
		log.Printf("Webhook: triage run failed for %s: %v", user.Email, err)
	}
	if outcome == triage.OutcomeRecorded {
		if err := s.users.SetHistoryID(ctx, user.ID, note.HistoryID.String()); err != nil {
			log.Printf("Webhook: watermark advance failed for %s: %v", user.Email, err)
		}
	}
	writeJSON(w, map[string]string{"message": "Notification received"})
}

// handleTest triggers a triage run directly, bypassing Pub/Sub.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Email     string `json:"email"`
		HistoryID string `json:"history_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]string{"error": err.Error()})
		return
	}
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		writeJSON(w, map[string]string{"error": err.Error()})
		return
	}
	if user == nil {
		writeJSON(w, map[string]string{"error": "user not found"})
		return
	}
	outcome, err := s.triageRun(ctx, user, req.HistoryID)
	if err != nil {
		writeJSON(w, map[string]string{"outcome": string(outcome), "error": err.Error()})
		return
	}
	writeJSON(w, map[string]string{"outcome": string(outcome)})
}

// handleEmails returns the caller's latest history records.
func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	emails, err := s.history.ListByReceiver(r.Context(), email, 10)
	if err != nil {
		log.Printf("API: history read failed for %s: %v", email, err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	writeJSON(w, emails)
}

// handleMe returns the stored profile of the caller.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email := emailFromContext(r.Context())
	user, err := s.users.GetByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"name":        user.Name,
		"given_name":  user.GivenName,
		"family_name": user.FamilyName,
		"picture":     user.Picture,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: response encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
