package handler

import (
	"net/http"

	"github.com/sakif/devfolio/internal/metadata"
)

// MetadataHandler serves the URL-import endpoint.
type MetadataHandler struct {
	extractor *metadata.Extractor
}

// NewMetadataHandler creates a MetadataHandler.
func NewMetadataHandler(extractor *metadata.Extractor) *MetadataHandler {
	return &MetadataHandler{extractor: extractor}
}

type extractMetadataRequest struct {
	URL string `json:"url"`
}

// Extract handles POST /api/extract-metadata: fetch the page, extract its
// metadata, and return both the raw metadata and the synthetic catalog
// record ready for a subsequent repos save.
func (h *MetadataHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractMetadataRequest
	if !decode(w, r, &req) {
		return
	}

	meta, project, err := h.extractor.Extract(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"metadata": meta,
		"project":  project,
	})
}
