package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireSession(t *testing.T) {
	sessions := newTestSessions(t)

	var captured *Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireSession(sessions)(next)

	t.Run("valid session passes through", func(t *testing.T) {
		captured = nil
		token, err := sessions.Issue(testSession())
		if err != nil {
			t.Fatalf("issuing session: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if captured == nil || captured.UserID != "42" {
			t.Errorf("session not placed in context: %+v", captured)
		}
	})

	t.Run("missing cookie rejected", func(t *testing.T) {
		captured = nil
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
		if captured != nil {
			t.Error("handler must not run without a session")
		}
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})
}

func TestSessionFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := SessionFromContext(req.Context()); ok {
		t.Error("expected no session on an anonymous request")
	}
}
