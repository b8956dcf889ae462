package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/devfolio/internal/handler"
	"github.com/sakif/devfolio/internal/metadata"
)

func TestMetadataHandler_Extract(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head>
			<meta property="og:title" content="My Project">
			<meta property="og:description" content="A thing I built">
			<meta property="og:site_name" content="Example">
		</head><body></body></html>`))
	}))
	t.Cleanup(page.Close)

	h := handler.NewMetadataHandler(metadata.NewExtractor())

	t.Run("valid extraction", func(t *testing.T) {
		rr := postJSON(t, h.Extract, "/api/extract-metadata", `{"url": "`+page.URL+`"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["success"])

		meta := body["metadata"].(map[string]any)
		assert.Equal(t, "My Project", meta["title"])

		project := body["project"].(map[string]any)
		assert.Equal(t, "My Project", project["name"])
		assert.Equal(t, "Example/My Project", project["fullName"])
		assert.Equal(t, true, project["isImported"])
		assert.Equal(t, "Web Project", project["language"])
	})

	t.Run("missing url", func(t *testing.T) {
		rr := postJSON(t, h.Extract, "/api/extract-metadata", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed url", func(t *testing.T) {
		rr := postJSON(t, h.Extract, "/api/extract-metadata", `{"url": "not a url"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unreachable url", func(t *testing.T) {
		rr := postJSON(t, h.Extract, "/api/extract-metadata", `{"url": "http://127.0.0.1:1"}`)
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}
