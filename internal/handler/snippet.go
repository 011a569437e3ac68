package handler

import (
	"log/slog"
	"net/http"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
)

// SnippetHandler covers snippet CRUD, forking, star/like toggles, comments
// and the listing endpoints. Anonymous requests carry an empty userID;
// the service decides what that viewer may see.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleCreate saves a new snippet.
//
// HTTP: POST /api/code
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.CreateSnippetInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.snippets.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGet returns one snippet with project, collaborators and comments.
//
// HTTP: GET /api/code/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.snippets.Get(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /api/code/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req service.UpdateSnippetInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.snippets.Update(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet.
//
// HTTP: DELETE /api/code/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.snippets.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFork duplicates a snippet into the requester's account.
//
// HTTP: POST /api/code/{id}/fork
// BODY (optional): {"isPublic": false} — omitted inherits the source's
// visibility.
func (h *SnippetHandler) HandleFork(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		IsPublic *bool `json:"isPublic"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	fork, err := h.snippets.Fork(r.Context(), r.PathValue("id"), userID, req.IsPublic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fork)
}

// toggleResponse is shared by the star and like endpoints.
type toggleResponse struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// HandleToggleStar flips the requester's star.
//
// HTTP: POST /api/code/{id}/star
func (h *SnippetHandler) HandleToggleStar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	starred, count, err := h.snippets.ToggleStar(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Active: starred, Count: count})
}

// HandleToggleLike flips the requester's like.
//
// HTTP: POST /api/code/{id}/like
func (h *SnippetHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	liked, count, err := h.snippets.ToggleLike(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Active: liked, Count: count})
}

// HandleListPublic is the public discovery feed.
//
// HTTP: GET /api/code/public (also mounted at /api/code/public/all)
func (h *SnippetHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	snippets, err := h.snippets.ListPublic(r.Context(), viewerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleListCollaborative lists public snippets open for collaboration.
//
// HTTP: GET /api/code/collaborative
func (h *SnippetHandler) HandleListCollaborative(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	snippets, err := h.snippets.ListCollaborative(r.Context(), viewerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleListMine lists the requester's own snippets, private included.
//
// HTTP: GET /api/code/user/owned
func (h *SnippetHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	snippets, err := h.snippets.ListOwned(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleListForked lists the requester's forks.
//
// HTTP: GET /api/code/user/forked
func (h *SnippetHandler) HandleListForked(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	snippets, err := h.snippets.ListForked(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleListTags returns every tag name in use.
//
// HTTP: GET /api/tags
func (h *SnippetHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.snippets.ListTags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleAddComment posts a comment on a snippet.
//
// HTTP: POST /api/code/{id}/comments
func (h *SnippetHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.snippets.AddComment(r.Context(), r.PathValue("id"), userID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleDeleteComment removes a comment.
//
// HTTP: DELETE /api/code/{id}/comments/{commentID}
func (h *SnippetHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.snippets.DeleteComment(r.Context(), r.PathValue("id"), r.PathValue("commentID"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
