package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/devfolio/internal/auth"
	"github.com/sakif/devfolio/internal/github"
	"github.com/sakif/devfolio/internal/handler"
)

func TestGitHubHandler_Repos(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The access token from the session must reach GitHub.
		assert.Equal(t, "Bearer gho_token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 42, "name": "devfolio", "full_name": "alice/devfolio", "language": "Go"}]`))
	}))
	t.Cleanup(api.Close)

	sessions, err := auth.NewSessionService("test-secret-at-least-16-chars")
	assert.NoError(t, err)
	h := handler.NewGitHubHandler(github.NewClientWithBaseURL(api.URL))
	protected := auth.RequireSession(sessions)(http.HandlerFunc(h.Repos))

	token, err := sessions.Issue(auth.Session{UserID: "42", AccessToken: "gho_token"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/github/repos", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	repos := body["repositories"].([]any)
	assert.Len(t, repos, 1)
	first := repos[0].(map[string]any)
	assert.Equal(t, float64(42), first["githubId"])
	assert.Equal(t, "alice/devfolio", first["fullName"])
}

func TestGitHubHandler_Profile_UpstreamFailure(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(api.Close)

	sessions, err := auth.NewSessionService("test-secret-at-least-16-chars")
	assert.NoError(t, err)
	h := handler.NewGitHubHandler(github.NewClientWithBaseURL(api.URL))
	protected := auth.RequireSession(sessions)(http.HandlerFunc(h.Profile))

	token, err := sessions.Issue(auth.Session{UserID: "42", AccessToken: "expired"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/github/profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "upstream_error", body["error"])
}
