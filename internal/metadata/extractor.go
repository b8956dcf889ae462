// Package metadata fetches an arbitrary URL and extracts page metadata for
// "imported projects" — portfolio entries that are not GitHub repositories.
//
// Extraction is tag inspection with layered fallbacks, checked in order:
// Open Graph → Twitter Card → generic meta → raw tag. Whatever survives is
// shaped into a synthetic catalog record flagged as imported, so the rest of
// the system treats URL imports and GitHub repositories identically.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/sakif/devfolio/internal/apperror"
	"github.com/sakif/devfolio/internal/model"
)

// Browser-ish UA: some sites serve meta-less stubs to unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

// PageMetadata is everything we could learn about a page.
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName"`
	URL         string `json:"url"`
	Favicon     string `json:"favicon"`
	Type        string `json:"type"`
	Keywords    string `json:"keywords"`
	Author      string `json:"author"`
}

// Extractor fetches and parses pages.
type Extractor struct {
	httpClient *http.Client
}

// NewExtractor creates an Extractor with a 10-second timeout.
func NewExtractor() *Extractor {
	return &Extractor{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Extract validates the URL, fetches its HTML, and returns the extracted
// metadata plus the synthetic imported-project record.
//
// Malformed URLs are rejected before any network call. A fetch failure or
// non-success status is an upstream error — surfaced to the user, never
// retried.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*PageMetadata, *model.Repository, error) {
	pageURL, err := validateURL(rawURL)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("metadata: building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, nil, apperror.Upstream("metadata", fmt.Sprintf("fetching %s: %v", pageURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, apperror.Upstream("metadata", fmt.Sprintf("%s returned status %d", pageURL, resp.StatusCode))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, nil, apperror.Upstream("metadata", fmt.Sprintf("parsing %s: %v", pageURL, err))
	}

	meta := extract(doc, pageURL)
	return meta, importedProject(meta), nil
}

func validateURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, apperror.ValidationFailed("url", "URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, apperror.ValidationFailed("url", "invalid URL format")
	}
	return parsed, nil
}

// tagIndex is one pass over the parsed document: meta tags keyed by
// property/name, link tags keyed by rel, and the <title> text. The fallback
// chains below read from it.
type tagIndex struct {
	meta  map[string]string
	links map[string]string
	title string
}

func indexTags(doc *html.Node) *tagIndex {
	idx := &tagIndex{
		meta:  make(map[string]string),
		links: make(map[string]string),
	}
	walk(doc, idx)
	return idx
}

func walk(n *html.Node, idx *tagIndex) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			key := getAttr(n, "property")
			if key == "" {
				key = getAttr(n, "name")
			}
			if content := getAttr(n, "content"); key != "" && content != "" {
				if _, seen := idx.meta[key]; !seen {
					idx.meta[key] = content
				}
			}
		case "link":
			rel := strings.ToLower(getAttr(n, "rel"))
			if href := getAttr(n, "href"); rel != "" && href != "" {
				if _, seen := idx.links[rel]; !seen {
					idx.links[rel] = href
				}
			}
		case "title":
			if idx.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				idx.title = strings.TrimSpace(n.FirstChild.Data)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, idx)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extract(doc *html.Node, pageURL *url.URL) *PageMetadata {
	idx := indexTags(doc)

	meta := &PageMetadata{
		Title: firstOf(
			idx.meta["og:title"],
			idx.meta["twitter:title"],
			idx.title,
			"Untitled Project",
		),
		Description: firstOf(
			idx.meta["og:description"],
			idx.meta["twitter:description"],
			idx.meta["description"],
			"No description available",
		),
		Image: firstOf(
			idx.meta["og:image"],
			idx.meta["twitter:image"],
			idx.links["icon"],
			idx.links["shortcut icon"],
		),
		SiteName: firstOf(
			idx.meta["og:site_name"],
			pageURL.Hostname(),
		),
		URL: pageURL.String(),
		Favicon: firstOf(
			idx.links["icon"],
			idx.links["shortcut icon"],
			idx.links["apple-touch-icon"],
			pageURL.Scheme+"://"+pageURL.Host+"/favicon.ico",
		),
		Type: firstOf(
			idx.meta["og:type"],
			"website",
		),
		Keywords: idx.meta["keywords"],
		Author: firstOf(
			idx.meta["author"],
			idx.meta["article:author"],
		),
	}

	meta.Image = resolveRelative(meta.Image, pageURL)
	meta.Favicon = resolveRelative(meta.Favicon, pageURL)
	return meta
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveRelative turns a path-relative image or favicon reference into an
// absolute URL against the page it came from.
func resolveRelative(ref string, pageURL *url.URL) string {
	if ref == "" || !strings.HasPrefix(ref, "/") {
		return ref
	}
	resolved, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return pageURL.ResolveReference(resolved).String()
}

// importedProject shapes extracted metadata into a catalog record. The
// GitHub ID is synthesized from the import instant (unix milliseconds) so
// URL imports share the catalog's unique external-ID keying with real
// repositories.
func importedProject(meta *PageMetadata) *model.Repository {
	now := time.Now()
	name := truncate(meta.Title, maxNameLength)
	favicon, siteName := meta.Favicon, meta.SiteName
	keywords, author := meta.Keywords, meta.Author

	return &model.Repository{
		GitHubID:    now.UnixMilli(),
		Name:        name,
		FullName:    meta.SiteName + "/" + name,
		Description: truncate(meta.Description, maxDescriptionLength),
		HTMLURL:     meta.URL,
		CloneURL:    meta.URL,
		Language:    "Web Project",
		IsImported:  true,
		Favicon:     &favicon,
		SiteName:    &siteName,
		Keywords:    &keywords,
		Author:      &author,
		CreatedAt:   now,
		UpdatedAt:   now,
		PushedAt:    &now,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
