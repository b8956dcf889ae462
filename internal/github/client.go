// Package github is a thin client for the two GitHub REST calls the
// dashboard needs: the authenticated user's profile and their repository
// list. Calls are synchronous request/response with a single attempt — a
// network failure or non-success status surfaces as an upstream error for
// the request that triggered it.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sakif/devfolio/internal/apperror"
	"github.com/sakif/devfolio/internal/model"
)

const defaultBaseURL = "https://api.github.com"

// reposPerPage bounds the repository listing to one page of up to 100.
// Accounts with more repositories are not fully enumerated — a known
// limitation of the dashboard's picker, kept on purpose.
const reposPerPage = 100

// Profile is the portion of GitHub's /user response we care about. GitHub
// returns a much larger object; we only unmarshal the mirrored fields.
type Profile struct {
	ID              int64  `json:"id"`    // stable numeric user ID
	Login           string `json:"login"` // GitHub username
	Name            string `json:"name"`
	Email           string `json:"email"` // empty if hidden in GitHub settings
	AvatarURL       string `json:"avatar_url"`
	Bio             string `json:"bio"`
	Location        string `json:"location"`
	Blog            string `json:"blog"` // website URL
	TwitterUsername string `json:"twitter_username"`
	Company         string `json:"company"`
	PublicRepos     int    `json:"public_repos"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
}

// repo is the wire shape of one /user/repos entry.
type repo struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Description     string     `json:"description"`
	HTMLURL         string     `json:"html_url"`
	CloneURL        string     `json:"clone_url"`
	Language        string     `json:"language"`
	StargazersCount int        `json:"stargazers_count"`
	ForksCount      int        `json:"forks_count"`
	Size            int        `json:"size"`
	Private         bool       `json:"private"`
	Fork            bool       `json:"fork"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PushedAt        *time.Time `json:"pushed_at"`
}

// Client calls the GitHub REST API with a per-request OAuth token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client with a 10-second timeout.
func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL creates a Client against a custom API root. Used in
// tests to point at an httptest server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// GetUser fetches the authenticated user's profile.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/user", accessToken, &profile); err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, apperror.Upstream("github", "invalid user in /user response")
	}
	return &profile, nil
}

// ListRepositories fetches one page of up to 100 of the authenticated
// user's repositories, most recently updated first, normalized into the
// catalog shape. Ownership (UserID) is assigned by the store on upsert.
func (c *Client) ListRepositories(ctx context.Context, accessToken string) ([]model.Repository, error) {
	var page []repo
	path := fmt.Sprintf("/user/repos?sort=updated&per_page=%d", reposPerPage)
	if err := c.get(ctx, path, accessToken, &page); err != nil {
		return nil, err
	}

	repos := make([]model.Repository, len(page))
	for i, r := range page {
		repos[i] = model.Repository{
			GitHubID:        r.ID,
			Name:            r.Name,
			FullName:        r.FullName,
			Description:     r.Description,
			HTMLURL:         r.HTMLURL,
			CloneURL:        r.CloneURL,
			Language:        r.Language,
			StargazersCount: r.StargazersCount,
			ForksCount:      r.ForksCount,
			Size:            r.Size,
			IsPrivate:       r.Private,
			IsFork:          r.Fork,
			CreatedAt:       r.CreatedAt,
			UpdatedAt:       r.UpdatedAt,
			PushedAt:        r.PushedAt,
		}
	}
	return repos, nil
}

func (c *Client) get(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("github: building request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Upstream("github", fmt.Sprintf("calling %s: %v", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperror.Upstream("github", fmt.Sprintf("%s returned status %d", path, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Upstream("github", fmt.Sprintf("decoding %s response: %v", path, err))
	}
	return nil
}
