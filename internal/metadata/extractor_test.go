package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sakif/devfolio/internal/apperror"
)

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_OpenGraphPreferred(t *testing.T) {
	srv := serve(t, `<html><head>
		<title>Raw Title</title>
		<meta property="og:title" content="OG Title">
		<meta name="twitter:title" content="Twitter Title">
		<meta property="og:description" content="OG description">
		<meta property="og:image" content="https://cdn.example.com/og.png">
		<meta property="og:site_name" content="Example Site">
		<meta property="og:type" content="article">
		<meta name="keywords" content="go,portfolio">
		<meta name="author" content="Alice">
	</head><body></body></html>`)

	meta, project, err := NewExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.Title != "OG Title" {
		t.Errorf("og:title should win, got %q", meta.Title)
	}
	if meta.Description != "OG description" {
		t.Errorf("unexpected description %q", meta.Description)
	}
	if meta.Image != "https://cdn.example.com/og.png" {
		t.Errorf("unexpected image %q", meta.Image)
	}
	if meta.SiteName != "Example Site" {
		t.Errorf("unexpected site name %q", meta.SiteName)
	}
	if meta.Type != "article" {
		t.Errorf("unexpected type %q", meta.Type)
	}
	if meta.Keywords != "go,portfolio" || meta.Author != "Alice" {
		t.Errorf("keywords/author not extracted: %q / %q", meta.Keywords, meta.Author)
	}

	if project == nil || !project.IsImported {
		t.Fatal("expected an imported project record")
	}
	if project.Name != "OG Title" {
		t.Errorf("project name should come from the title, got %q", project.Name)
	}
	if project.FullName != "Example Site/OG Title" {
		t.Errorf("unexpected full name %q", project.FullName)
	}
	if project.Language != "Web Project" {
		t.Errorf("unexpected language %q", project.Language)
	}
	if project.GitHubID == 0 {
		t.Error("expected a synthesized external ID")
	}
}

func TestExtract_FallbackLayering(t *testing.T) {
	srv := serve(t, `<html><head>
		<title>Plain Title</title>
		<meta name="twitter:description" content="Twitter description">
	</head><body></body></html>`)

	meta, _, err := NewExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.Title != "Plain Title" {
		t.Errorf("expected <title> fallback, got %q", meta.Title)
	}
	if meta.Description != "Twitter description" {
		t.Errorf("expected twitter fallback, got %q", meta.Description)
	}
	// Defaults on a page that carries nothing at all.
	if meta.Type != "website" {
		t.Errorf("expected default type, got %q", meta.Type)
	}
	if !strings.HasSuffix(meta.Favicon, "/favicon.ico") {
		t.Errorf("expected origin favicon fallback, got %q", meta.Favicon)
	}
	if !strings.HasPrefix(meta.SiteName, "127.0.0.1") {
		t.Errorf("expected hostname site-name fallback, got %q", meta.SiteName)
	}
}

func TestExtract_EmptyPageDefaults(t *testing.T) {
	srv := serve(t, `<html><head></head><body></body></html>`)

	meta, project, err := NewExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title != "Untitled Project" {
		t.Errorf("expected title default, got %q", meta.Title)
	}
	if meta.Description != "No description available" {
		t.Errorf("expected description default, got %q", meta.Description)
	}
	if project.Name != "Untitled Project" {
		t.Errorf("unexpected project name %q", project.Name)
	}
}

func TestExtract_ResolvesRelativeURLs(t *testing.T) {
	srv := serve(t, `<html><head>
		<meta property="og:image" content="/img/cover.png">
		<link rel="icon" href="/static/favicon.png">
	</head><body></body></html>`)

	meta, _, err := NewExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.Image != srv.URL+"/img/cover.png" {
		t.Errorf("relative image not resolved: %q", meta.Image)
	}
	if meta.Favicon != srv.URL+"/static/favicon.png" {
		t.Errorf("relative favicon not resolved: %q", meta.Favicon)
	}
}

func TestExtract_TruncatesLongFields(t *testing.T) {
	longTitle := strings.Repeat("t", 300)
	longDesc := strings.Repeat("d", 900)
	srv := serve(t, `<html><head>
		<meta property="og:title" content="`+longTitle+`">
		<meta property="og:description" content="`+longDesc+`">
	</head><body></body></html>`)

	_, project, err := NewExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(project.Name) != maxNameLength {
		t.Errorf("expected name truncated to %d, got %d", maxNameLength, len(project.Name))
	}
	if len(project.Description) != maxDescriptionLength {
		t.Errorf("expected description truncated to %d, got %d", maxDescriptionLength, len(project.Description))
	}
}

func TestExtract_RejectsInvalidURLs(t *testing.T) {
	extractor := NewExtractor()
	for _, raw := range []string{"", "   ", "not a url", "ftp://example.com", "example.com/path"} {
		_, _, err := extractor.Extract(context.Background(), raw)
		if err == nil {
			t.Errorf("expected %q to be rejected", raw)
			continue
		}
		if !apperror.IsValidation(err) {
			t.Errorf("expected validation error for %q, got %v", raw, err)
		}
	}
}

func TestExtract_UpstreamFailureOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, _, err := NewExtractor().Extract(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !apperror.IsUpstream(err) {
		t.Errorf("expected upstream classification, got %v", err)
	}
}
