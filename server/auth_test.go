package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)
	return New(&config.Config{
		JWTSecret: "test-secret",
		Timezone:  loc,
	}, nil, nil, nil)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	s := testServer(t)
	token, err := s.createSessionToken("alice@x.com")
	require.NoError(t, err)

	email, err := s.verifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", email)
}

func TestVerifySessionTokenRejectsGarbage(t *testing.T) {
	s := testServer(t)
	_, err := s.verifySessionToken("not-a-token")
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	s := testServer(t)
	var seenEmail string
	handler := s.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenEmail = emailFromContext(r.Context())
	}))

	// No header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong scheme.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/emails", nil)
	req.Header.Set("Authorization", "Basic abc")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Invalid token.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/emails", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token.
	token, err := s.createSessionToken("alice@x.com")
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/emails", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@x.com", seenEmail)
}
