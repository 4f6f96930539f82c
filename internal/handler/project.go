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

type ProjectHandler struct {
	projects *store.ProjectStore
	media    *media.Manager
	hub      *events.Hub
	logger   *slog.Logger
}

func NewProjectHandler(projects *store.ProjectStore, mediaMgr *media.Manager, hub *events.Hub, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, media: mediaMgr, hub: hub, logger: logger}
}

func (h *ProjectHandler) publish(action string, id int64) {
	if h.hub != nil {
		h.hub.Publish(events.Event{Entity: "project", Action: action, ID: id})
	}
}

type projectRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// projectDetail carries the ordered items plus the derived cover, which
// is whatever image currently sits at position zero.
type projectDetail struct {
	model.Project
	CoverURL string            `json:"cover_url,omitempty"`
	Items    []model.MediaItem `json:"items"`
}

// List returns published projects, newest first.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ListAll includes unpublished drafts. Admin only.
func (h *ProjectHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *ProjectHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	projects, err := h.projects.List(publishedOnly)
	if err != nil {
		h.logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetBySlug(r.PathValue("slug"))
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil || !project.Published {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	h.detail(w, r, project)
}

func (h *ProjectHandler) detail(w http.ResponseWriter, r *http.Request, project *model.Project) {
	items, err := h.media.Items(r.Context(), model.KindProject, project.ID)
	if err != nil {
		h.logger.Error("get project items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if items == nil {
		items = []model.MediaItem{}
	}

	cover, err := h.media.Cover(r.Context(), model.KindProject, project.ID)
	if err != nil {
		h.logger.Error("get project cover", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	detail := projectDetail{Project: *project, Items: items}
	if cover != nil {
		detail.CoverURL = cover.URL
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
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

	project, err := h.projects.Create(req.Title, req.Slug, req.Summary, req.Body)
	if err != nil {
		h.logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.publish("created", project.ID)
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.projects.GetByID(id)
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	var req projectRequest
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

	project, err := h.projects.Update(id, req.Title, req.Slug, req.Summary, req.Body)
	if err != nil {
		h.logger.Error("update project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	h.publish("updated", id)
	writeJSON(w, http.StatusOK, project)
}

type publishRequest struct {
	Published bool `json:"published"`
}

func (h *ProjectHandler) SetPublished(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.projects.GetByID(id)
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.projects.SetPublished(id, req.Published); err != nil {
		h.logger.Error("set project published", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	project, err := h.projects.GetByID(id)
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	h.publish("updated", id)
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.projects.GetByID(id)
	if err != nil {
		h.logger.Error("get project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	if err := h.media.DeleteCollection(r.Context(), model.KindProject, id); err != nil {
		h.logger.Error("delete project collection", "error", err)
		writeError(w, http.StatusInternalServerError, fault.Message(err))
		return
	}

	if err := h.projects.Delete(id); err != nil {
		h.logger.Error("delete project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	h.publish("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}
