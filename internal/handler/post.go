package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwhitfield/atelier/internal/events"
	"github.com/jwhitfield/atelier/internal/model"
	"github.com/jwhitfield/atelier/internal/store"
)

type PostHandler struct {
	posts  *store.PostStore
	hub    *events.Hub
	logger *slog.Logger
}

func NewPostHandler(posts *store.PostStore, hub *events.Hub, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, hub: hub, logger: logger}
}

func (h *PostHandler) publish(action string, id int64) {
	if h.hub != nil {
		h.hub.Publish(events.Event{Entity: "post", Action: action, ID: id})
	}
}

type postRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, true)
}

func (h *PostHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, false)
}

func (h *PostHandler) list(w http.ResponseWriter, publishedOnly bool) {
	posts, err := h.posts.List(publishedOnly)
	if err != nil {
		h.logger.Error("list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.PathValue("slug"))
	if err != nil {
		h.logger.Error("get post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if post == nil || !post.Published {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
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

	post, err := h.posts.Create(req.Title, req.Slug, req.Body)
	if err != nil {
		h.logger.Error("create post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	h.publish("created", post.ID)
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.posts.GetByID(id)
	if err != nil {
		h.logger.Error("get post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	var req postRequest
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

	post, err := h.posts.Update(id, req.Title, req.Slug, req.Body, req.Published)
	if err != nil {
		h.logger.Error("update post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	h.publish("updated", id)
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.posts.GetByID(id)
	if err != nil {
		h.logger.Error("get post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := h.posts.Delete(id); err != nil {
		h.logger.Error("delete post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	h.publish("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
