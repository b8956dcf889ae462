package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/devfolio/internal/apperror"
)

func TestGetUser(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 583231,
			"login": "alice",
			"name": "Alice",
			"email": "alice@example.com",
			"avatar_url": "https://avatars.example.com/alice.png",
			"bio": "builds things",
			"public_repos": 12,
			"followers": 3,
			"following": 4
		}`))
	}))
	t.Cleanup(srv.Close)

	profile, err := NewClientWithBaseURL(srv.URL).GetUser(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if gotAccept != "application/vnd.github.v3+json" {
		t.Errorf("unexpected Accept header %q", gotAccept)
	}
	if profile.ID != 583231 || profile.Login != "alice" || profile.PublicRepos != 12 {
		t.Errorf("profile not decoded: %+v", profile)
	}
}

func TestGetUser_RejectsInvalidProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewClientWithBaseURL(srv.URL).GetUser(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error for a profile without an ID")
	}
	if !apperror.IsUpstream(err) {
		t.Errorf("expected upstream classification, got %v", err)
	}
}

func TestListRepositories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("sort") != "updated" || q.Get("per_page") != "100" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": 42,
				"name": "devfolio",
				"full_name": "alice/devfolio",
				"description": "portfolio builder",
				"html_url": "https://github.com/alice/devfolio",
				"clone_url": "https://github.com/alice/devfolio.git",
				"language": "Go",
				"stargazers_count": 7,
				"forks_count": 2,
				"size": 321,
				"private": false,
				"fork": false,
				"created_at": "2024-01-02T03:04:05Z",
				"updated_at": "2024-06-07T08:09:10Z",
				"pushed_at": "2024-06-07T08:09:10Z"
			},
			{"id": 43, "name": "dotfiles", "full_name": "alice/dotfiles", "private": true}
		]`))
	}))
	t.Cleanup(srv.Close)

	repos, err := NewClientWithBaseURL(srv.URL).ListRepositories(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repos) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(repos))
	}
	first := repos[0]
	if first.GitHubID != 42 || first.FullName != "alice/devfolio" || first.Language != "Go" {
		t.Errorf("repo not normalized: %+v", first)
	}
	if first.StargazersCount != 7 || first.PushedAt == nil {
		t.Errorf("counts/timestamps not carried: %+v", first)
	}
	if !repos[1].IsPrivate {
		t.Error("private flag not carried")
	}
	if repos[1].PushedAt != nil {
		t.Error("missing pushed_at should stay nil")
	}
}

func TestGet_UpstreamErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClientWithBaseURL(srv.URL).GetUser(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !apperror.IsUpstream(err) {
		t.Errorf("expected upstream classification, got %v", err)
	}
}
