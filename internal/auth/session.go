package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionLifetime is how long a login stays valid. After expiry the user
// goes through the OAuth flow again.
const SessionLifetime = 24 * time.Hour

// CookieName is the session cookie. It is deliberately NOT HttpOnly: the
// dashboard reads the profile and GitHub access token client-side to call
// the GitHub API directly. The signature still prevents tampering — a
// client can read the session, not forge one.
const CookieName = "github-session"

// Session is the signed payload of a login: the user's GitHub identity plus
// the OAuth access token used for subsequent GitHub API calls. Presence of a
// valid session cookie is the sole authentication signal for the dashboard.
type Session struct {
	UserID         string `json:"id"`    // GitHub's numeric ID, stringified
	Name           string `json:"name"`  // display name, falls back to login
	Email          string `json:"email"`
	Image          string `json:"image"` // avatar URL
	GitHubUsername string `json:"githubUsername"`
	AccessToken    string `json:"accessToken"`
}

// sessionClaims is the JWT payload: registered claims for expiry/issuer
// plus the session fields.
type sessionClaims struct {
	jwt.RegisteredClaims
	Name           string `json:"name"`
	Email          string `json:"email"`
	Image          string `json:"image"`
	GitHubUsername string `json:"githubUsername"`
	AccessToken    string `json:"accessToken"`
}

const issuer = "devfolio"

// SessionService signs and verifies session tokens with an HMAC secret.
type SessionService struct {
	secret []byte
}

// NewSessionService creates a SessionService. The secret should be at least
// 32 bytes of random data in production (e.g. `openssl rand -hex 32`).
func NewSessionService(secret string) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &SessionService{secret: []byte(secret)}, nil
}

// Issue signs a session token with a fixed 24h expiry.
func (s *SessionService) Issue(session Session) (string, error) {
	return s.IssueWithDuration(session, SessionLifetime)
}

// IssueWithDuration signs a session token with a custom lifetime. Used in
// tests to mint already-expired tokens.
func (s *SessionService) IssueWithDuration(session Session, d time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
		Name:           session.Name,
		Email:          session.Email,
		Image:          session.Image,
		GitHubUsername: session.GitHubUsername,
		AccessToken:    session.AccessToken,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token.
//
// Checks performed by the jwt library: signature, expiry, issuer, and that
// the algorithm is HS256 (jwt.WithValidMethods closes the algorithm
// confusion hole where a token claims "none").
func (s *SessionService) Validate(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: session expired")
		}
		return nil, fmt.Errorf("auth: invalid session: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid session claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("auth: session has no subject")
	}

	return &Session{
		UserID:         claims.Subject,
		Name:           claims.Name,
		Email:          claims.Email,
		Image:          claims.Image,
		GitHubUsername: claims.GitHubUsername,
		AccessToken:    claims.AccessToken,
	}, nil
}
