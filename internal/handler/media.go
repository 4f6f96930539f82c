package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwhitfield/atelier/internal/action"
	"github.com/jwhitfield/atelier/internal/events"
	"github.com/jwhitfield/atelier/internal/model"
)

// maxUploadBytes caps a single image upload at 32 MiB.
const maxUploadBytes = 32 << 20

type MediaHandler struct {
	actions *action.Facade
	hub     *events.Hub
	logger  *slog.Logger
}

func NewMediaHandler(actions *action.Facade, hub *events.Hub, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{actions: actions, hub: hub, logger: logger}
}

func (h *MediaHandler) publish(action string, id int64) {
	if h.hub != nil {
		h.hub.Publish(events.Event{Entity: "media_item", Action: action, ID: id})
	}
}

func parentParams(r *http.Request) (model.ParentKind, int64) {
	kind := model.ParentKind(r.PathValue("kind"))
	parentID, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return kind, parentID
}

// Upload stores the multipart file and returns its public URL. The image
// is not part of the collection until AddItem references it.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind, parentID := parentParams(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	res := h.actions.UploadImage(r.Context(), kind, parentID, file, header.Filename, header.Header.Get("Content-Type"))
	writeResult(w, res)
}

type addItemRequest struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

func (h *MediaHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	kind, parentID := parentParams(r)

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res := h.actions.AddItem(r.Context(), kind, parentID, req.URL, req.Caption)
	if res.Data != nil {
		h.publish("created", res.Data.Item.ID)
	}
	writeResult(w, res)
}

type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

// Reorder rewrites the collection order to match the given id list,
// which must name every current item exactly once.
func (h *MediaHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	kind, parentID := parentParams(r)

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res := h.actions.ReorderItems(r.Context(), kind, parentID, req.IDs)
	if res.Data != nil {
		h.publish("reordered", parentID)
	}
	writeResult(w, res)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	res := h.actions.DeleteItem(r.Context(), id)
	if res.Data != nil {
		h.publish("deleted", id)
	}
	writeResult(w, res)
}
