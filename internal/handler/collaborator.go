package handler

import (
	"log/slog"
	"net/http"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
)

// CollaboratorHandler manages the collaborator grants of a snippet.
type CollaboratorHandler struct {
	collabs *service.CollaboratorService
	logger  *slog.Logger
}

func NewCollaboratorHandler(collabs *service.CollaboratorService, logger *slog.Logger) *CollaboratorHandler {
	return &CollaboratorHandler{collabs: collabs, logger: logger}
}

// HandleList returns the collaborators of a snippet.
//
// HTTP: GET /api/code/{id}/collaborators
func (h *CollaboratorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	collaborators, err := h.collabs.List(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collaborators)
}

// HandleAdd grants a user access by username.
//
// HTTP: POST /api/code/{id}/collaborators
func (h *CollaboratorHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.AddCollaboratorInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	collab, err := h.collabs.Add(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collab)
}

// HandleUpdate changes a collaborator's role or permission flags.
//
// HTTP: PUT /api/code/{id}/collaborators/{userID}
func (h *CollaboratorHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	var req service.UpdateCollaboratorInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	collab, err := h.collabs.Update(r.Context(), r.PathValue("id"), r.PathValue("userID"), requesterID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collab)
}

// HandleRemove revokes a grant. Collaborators may remove themselves.
//
// HTTP: DELETE /api/code/{id}/collaborators/{userID}
func (h *CollaboratorHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	if err := h.collabs.Remove(r.Context(), r.PathValue("id"), r.PathValue("userID"), requesterID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
