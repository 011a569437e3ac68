package handler

import (
	"log/slog"
	"net/http"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
)

// ProjectHandler covers project CRUD.
type ProjectHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// HandleCreate makes a new project.
//
// HTTP: POST /api/projects
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.CreateProjectInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// projectResponse bundles a project with its visible snippets on detail
// reads.
type projectResponse struct {
	*model.Project
	Snippets []model.Snippet `json:"snippets"`
}

// HandleGet returns a project and the snippets in it the viewer can see.
//
// HTTP: GET /api/projects/{id}
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	project, snippets, err := h.projects.Get(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Project: project, Snippets: snippets})
}

// HandleUpdate applies a partial update. Owner only.
//
// HTTP: PUT /api/projects/{id}
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.UpdateProjectInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Update(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleDelete removes a project and its snippets. Owner only.
//
// HTTP: DELETE /api/projects/{id}
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.projects.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMine lists the requester's projects.
//
// HTTP: GET /api/projects
func (h *ProjectHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	projects, err := h.projects.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}
