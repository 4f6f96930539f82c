package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwhitfield/atelier/internal/events"
	"github.com/jwhitfield/atelier/internal/fault"
	"github.com/jwhitfield/atelier/internal/media"
	"github.com/jwhitfield/atelier/internal/model"
	"github.com/jwhitfield/atelier/internal/store"
)

type AlbumHandler struct {
	albums *store.AlbumStore
	media  *media.Manager
	hub    *events.Hub
	logger *slog.Logger
}

func NewAlbumHandler(albums *store.AlbumStore, mediaMgr *media.Manager, hub *events.Hub, logger *slog.Logger) *AlbumHandler {
	return &AlbumHandler{albums: albums, media: mediaMgr, hub: hub, logger: logger}
}

func (h *AlbumHandler) publish(action string, id int64) {
	if h.hub != nil {
		h.hub.Publish(events.Event{Entity: "album", Action: action, ID: id})
	}
}

type albumRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type albumDetail struct {
	model.Album
	Items []model.MediaItem `json:"items"`
}

func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	albums, err := h.albums.List()
	if err != nil {
		h.logger.Error("list albums", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list albums")
		return
	}
	if albums == nil {
		albums = []model.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *AlbumHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	album, err := h.albums.GetBySlug(r.PathValue("slug"))
	if err != nil {
		h.logger.Error("get album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get album")
		return
	}
	if album == nil {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	items, err := h.media.Items(r.Context(), model.KindAlbum, album.ID)
	if err != nil {
		h.logger.Error("get album items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get album")
		return
	}
	if items == nil {
		items = []model.MediaItem{}
	}
	writeJSON(w, http.StatusOK, albumDetail{Album: *album, Items: items})
}

func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Title)
	}

	album, err := h.albums.Create(req.Title, req.Slug, req.Description)
	if err != nil {
		h.logger.Error("create album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create album")
		return
	}

	h.publish("created", album.ID)
	writeJSON(w, http.StatusCreated, album)
}

func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.albums.GetByID(id)
	if err != nil {
		h.logger.Error("get album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get album")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Slug == "" {
		req.Slug = existing.Slug
	}

	album, err := h.albums.Update(id, req.Title, req.Slug, req.Description)
	if err != nil {
		h.logger.Error("update album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update album")
		return
	}

	h.publish("updated", id)
	writeJSON(w, http.StatusOK, album)
}

type coverRequest struct {
	URL string `json:"url"`
}

// SetCover records the album's explicit cover image. An empty url clears
// it; the previous cover blob is left in place since items may still
// reference it.
func (h *AlbumHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.albums.GetByID(id)
	if err != nil {
		h.logger.Error("get album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get album")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	var req coverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.albums.SetCover(id, strings.TrimSpace(req.URL)); err != nil {
		h.logger.Error("set album cover", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set cover")
		return
	}

	album, err := h.albums.GetByID(id)
	if err != nil {
		h.logger.Error("get album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get album")
		return
	}

	h.publish("updated", id)
	writeJSON(w, http.StatusOK, album)
}

// Delete removes the album along with its image collection. Blob
// deletion failures abort so nothing is orphaned; the operator retries.
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.albums.GetByID(id)
	if err != nil {
		h.logger.Error("get album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get album")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "album not found")
		return
	}

	if err := h.media.DeleteCollection(r.Context(), model.KindAlbum, id); err != nil {
		h.logger.Error("delete album collection", "error", err)
		writeError(w, http.StatusInternalServerError, fault.Message(err))
		return
	}

	if err := h.media.DeleteBlob(r.Context(), existing.CoverURL); err != nil {
		h.logger.Error("delete album cover blob", "error", err)
		writeError(w, http.StatusInternalServerError, fault.Message(err))
		return
	}

	if err := h.albums.Delete(id); err != nil {
		h.logger.Error("delete album", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete album")
		return
	}

	h.publish("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
