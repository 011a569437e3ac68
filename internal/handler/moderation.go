package handler

import (
	"log/slog"
	"net/http"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
)

// ModerationHandler is the admin surface: user administration and
// announcement management. The service re-checks the admin role on every
// call, so these routes only need RequireAuth.
type ModerationHandler struct {
	moderation *service.ModerationService
	logger     *slog.Logger
}

func NewModerationHandler(moderation *service.ModerationService, logger *slog.Logger) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, logger: logger}
}

// HandleListUsers lists every account.
//
// HTTP: GET /api/moderation/users
func (h *ModerationHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	users, err := h.moderation.ListUsers(r.Context(), requesterID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleSuspend suspends an account.
//
// HTTP: PUT /api/moderation/users/{id}/suspend
func (h *ModerationHandler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, true)
}

// HandleUnsuspend reinstates an account.
//
// HTTP: PUT /api/moderation/users/{id}/unsuspend
func (h *ModerationHandler) HandleUnsuspend(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, false)
}

func (h *ModerationHandler) setSuspended(w http.ResponseWriter, r *http.Request, suspended bool) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	if err := h.moderation.SetSuspended(r.Context(), requesterID, r.PathValue("id"), suspended); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"suspended": suspended})
}

// HandleChangeRole assigns a role to an account.
//
// HTTP: PUT /api/moderation/users/{id}/role
func (h *ModerationHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Role model.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.moderation.ChangeRole(r.Context(), requesterID, r.PathValue("id"), req.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Role{"role": req.Role})
}

// HandleDeleteUser removes an account and its data.
//
// HTTP: DELETE /api/moderation/users/{id}
func (h *ModerationHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	if err := h.moderation.DeleteUser(r.Context(), requesterID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Announcements.

// HandleCreateAnnouncement publishes a site announcement.
//
// HTTP: POST /api/moderation/announcements
func (h *ModerationHandler) HandleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	var req service.AnnouncementInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.moderation.CreateAnnouncement(r.Context(), requesterID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// HandleUpdateAnnouncement replaces an announcement's fields.
//
// HTTP: PUT /api/moderation/announcements/{id}
func (h *ModerationHandler) HandleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())

	var req service.AnnouncementInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.moderation.UpdateAnnouncement(r.Context(), requesterID, r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleListAnnouncements lists every announcement for the dashboard.
//
// HTTP: GET /api/moderation/announcements
func (h *ModerationHandler) HandleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	announcements, err := h.moderation.ListAnnouncements(r.Context(), requesterID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}

// HandleActiveAnnouncements is the public feed of active announcements.
//
// HTTP: GET /api/announcements
func (h *ModerationHandler) HandleActiveAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.moderation.ListActiveAnnouncements(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}
