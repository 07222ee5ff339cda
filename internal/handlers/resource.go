package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/trackstore/trackstore/internal/errors"
	"github.com/trackstore/trackstore/internal/ingest"
)

// ResourceHandler serves the /resources endpoints.
type ResourceHandler struct {
	svc           *ingest.Service
	maxUploadSize int64
}

// NewResourceHandler creates a ResourceHandler with the given upload size
// limit in bytes.
func NewResourceHandler(svc *ingest.Service, maxUploadSize int64) *ResourceHandler {
	return &ResourceHandler{svc: svc, maxUploadSize: maxUploadSize}
}

// resourceInfoBody is the JSON body returned by the resource info endpoint.
type resourceInfoBody struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Upload handles POST /resources. The request body is the raw MP3 payload.
func (h *ResourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if mt, _, _ := strings.Cut(ct, ";"); strings.TrimSpace(mt) != "audio/mpeg" {
		writeError(w, apperrors.InvalidInput("content type %q is not supported: expected audio/mpeg", ct))
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	data, err := io.ReadAll(body)
	if err != nil {
		writeError(w, apperrors.InvalidInput("reading request body: payload exceeds %d bytes or was cut short", h.maxUploadSize))
		return
	}

	id, err := h.svc.Upload(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idBody{ID: id})
}

// Get handles GET /resources/{id}, returning the stored audio bytes.
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := h.svc.Content(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="resource_%d.mp3"`, id))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Info handles GET /resources/{id}/info, returning resource metadata
// without the audio bytes.
func (h *ResourceHandler) Info(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.svc.Resource(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resourceInfoBody{ID: res.ID, CreatedAt: res.CreatedAt})
}

// Delete handles DELETE /resources?id=1,2,3, removing the named resources
// and returning the IDs that were actually removed.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	csv := r.URL.Query().Get("id")

	removed, err := h.svc.Delete(r.Context(), csv)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idsBody{IDs: removed})
}
