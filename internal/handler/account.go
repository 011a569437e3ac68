package handler

import (
	"log/slog"
	"net/http"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
)

// AccountHandler covers self-service account deletion and data export.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleDelete permanently deletes the requester's account. The body must
// repeat the confirmation phrase and include the password for password
// accounts.
//
// HTTP: DELETE /api/users/account
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Confirmation string `json:"confirmation"`
		Password     string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), userID, req.Confirmation, req.Password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport downloads everything the requester owns as one JSON
// document.
//
// HTTP: GET /api/users/export-data
func (h *AccountHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	export, err := h.accounts.Export(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="devspace-export.json"`)
	writeJSON(w, http.StatusOK, export)
}
