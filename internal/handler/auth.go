package handler

// Login endpoint combining both halves of the OAuth dance on one route:
// a request without a code starts the flow (redirect to GitHub), a request
// with a code finishes it (exchange, profile fetch, session cookie).
// Browser-facing failures redirect to the login page's error state instead
// of returning JSON.

import (
	"net/http"
	"strconv"

	"github.com/rs/xid"

	"github.com/sakif/devfolio/internal/auth"
	"github.com/sakif/devfolio/internal/github"
)

const stateCookieName = "oauth-state"

// stateCookieMaxAge bounds how long a pending login attempt stays valid.
const stateCookieMaxAge = 10 * 60 // seconds

// AuthHandler drives the GitHub login flow and session lifecycle.
type AuthHandler struct {
	provider      *auth.GitHubProvider
	github        *github.Client
	sessions      *auth.SessionService
	appBaseURL    string // where the dashboard lives; redirect target after login
	secureCookies bool   // false for plain-http local dev
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(provider *auth.GitHubProvider, githubClient *github.Client, sessions *auth.SessionService, appBaseURL string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		provider:      provider,
		github:        githubClient,
		sessions:      sessions,
		appBaseURL:    appBaseURL,
		secureCookies: secureCookies,
	}
}

// Login handles GET /auth/github.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// GitHub reports user-denied access and misconfiguration via an error
	// query parameter on the callback.
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.redirectError(w, r, errCode)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.startFlow(w, r)
		return
	}
	h.finishFlow(w, r, code)
}

// startFlow issues a fresh CSRF state, stores it in a short-lived cookie,
// and sends the browser to GitHub's authorization page.
func (h *AuthHandler) startFlow(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// finishFlow verifies the CSRF state, exchanges the code, fetches the
// GitHub profile, and issues the session cookie.
func (h *AuthHandler) finishFlow(w http.ResponseWriter, r *http.Request, code string) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.redirectError(w, r, "state_mismatch")
		return
	}
	h.clearCookie(w, stateCookieName)

	accessToken, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.redirectError(w, r, "oauth_exchange_failed")
		return
	}

	profile, err := h.github.GetUser(r.Context(), accessToken)
	if err != nil {
		h.redirectError(w, r, "profile_fetch_failed")
		return
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}
	token, err := h.sessions.Issue(auth.Session{
		UserID:         strconv.FormatInt(profile.ID, 10),
		Name:           name,
		Email:          profile.Email,
		Image:          profile.AvatarURL,
		GitHubUsername: profile.Login,
		AccessToken:    accessToken,
	})
	if err != nil {
		h.redirectError(w, r, "session_failed")
		return
	}

	// Not HttpOnly: the dashboard reads the session client-side (see
	// auth.CookieName).
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		HttpOnly: false,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.appBaseURL+"/dashboard", http.StatusSeeOther)
}

// Logout handles POST /auth/logout: expire the session cookie. The JWT
// itself stays valid until its expiry; logout is purely cookie removal.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, auth.CookieName)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}

// Me handles GET /api/me: echo the authenticated session so the dashboard
// can restore its identity state. Requires the session middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid session required",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    session,
	})
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.appBaseURL+"/auth?error="+code, http.StatusSeeOther)
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
