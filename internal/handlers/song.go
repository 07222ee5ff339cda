package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/trackstore/trackstore/internal/errors"
	"github.com/trackstore/trackstore/internal/metadata"
	"github.com/trackstore/trackstore/internal/song"
)

// SongHandler serves the /songs endpoints.
type SongHandler struct {
	svc *song.Service
}

// NewSongHandler creates a SongHandler.
func NewSongHandler(svc *song.Service) *SongHandler {
	return &SongHandler{svc: svc}
}

// songBody is the JSON shape of a song record on the wire.
type songBody struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration string `json:"duration"`
	Year     string `json:"year"`
}

// Create handles POST /songs.
func (h *SongHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body songBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.InvalidInput("request body is not valid JSON"))
		return
	}

	id, err := h.svc.Create(r.Context(), &metadata.SongRecord{
		ID:       body.ID,
		Name:     body.Name,
		Artist:   body.Artist,
		Album:    body.Album,
		Duration: body.Duration,
		Year:     body.Year,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idBody{ID: id})
}

// Get handles GET /songs/{id}.
func (h *SongHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	sg, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songBody{
		ID:       sg.ID,
		Name:     sg.Name,
		Artist:   sg.Artist,
		Album:    sg.Album,
		Duration: sg.Duration,
		Year:     sg.Year,
	})
}

// Delete handles DELETE /songs?id=1,2,3, removing the named song records
// and returning the IDs that were actually removed.
func (h *SongHandler) Delete(w http.ResponseWriter, r *http.Request) {
	csv := r.URL.Query().Get("id")

	removed, err := h.svc.DeleteBatch(r.Context(), csv)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idsBody{IDs: removed})
}
