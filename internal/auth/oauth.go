// Package auth implements the GitHub OAuth flow and the session layer.
//
// FLOW:
//  1. GET /auth/github without a code redirects the browser to GitHub's
//     authorization page (with a CSRF state cookie).
//  2. GitHub calls back with a short-lived code.
//  3. The server exchanges the code for an access token (server-to-server,
//     using the client secret) and fetches the user's profile with it.
//  4. A session token carrying the profile and the access token is issued as
//     a cookie; the dashboard reads it client-side.
//
// Failures at the exchange or profile fetch are terminal for that request —
// no retry, the caller is redirected to the error state.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code
// flow.
//
// Scopes:
//   - "read:user"  — public profile (ID, login, avatar)
//   - "user:email" — email addresses
//   - "repo"       — repository listing for the dashboard's project picker
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a provider from OAuth App credentials.
// callbackURL must exactly match the app's configured callback.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email", "repo"},
			Endpoint:     github.Endpoint,
		},
	}
}

// AuthURL returns the GitHub authorization URL for the given CSRF state.
// The state is stored in a short-lived cookie and verified on callback.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for an access token. One external
// call; a failure here fails the whole login.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("auth: GitHub returned an empty access token")
	}
	return token.AccessToken, nil
}
