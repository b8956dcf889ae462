package handler

import (
	"net/http"

	"github.com/sakif/devfolio/internal/auth"
	"github.com/sakif/devfolio/internal/github"
)

// GitHubHandler proxies GitHub API reads for the authenticated dashboard,
// using the access token carried in the session.
type GitHubHandler struct {
	client *github.Client
}

// NewGitHubHandler creates a GitHubHandler.
func NewGitHubHandler(client *github.Client) *GitHubHandler {
	return &GitHubHandler{client: client}
}

// Profile handles GET /api/github/profile.
func (h *GitHubHandler) Profile(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid session required",
		})
		return
	}

	profile, err := h.client.GetUser(r.Context(), session.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"profile": profile,
	})
}

// Repos handles GET /api/github/repos: one page of up to 100 repositories,
// most recently updated first.
func (h *GitHubHandler) Repos(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid session required",
		})
		return
	}

	repos, err := h.client.ListRepositories(r.Context(), session.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"repositories": repos,
	})
}
