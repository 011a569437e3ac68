package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/config"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
	"github.com/glutton-su/DevSpace-sub002/internal/upload"
)

// UploadHandler takes multipart uploads: avatar images for the profile
// and code files that become snippets. Upload rejections keep the
// multer-style codes in the error field so clients can switch on them.
type UploadHandler struct {
	auths    *service.AuthService
	snippets *service.SnippetService
	limits   config.UploadLimits
	logger   *slog.Logger
}

func NewUploadHandler(auths *service.AuthService, snippets *service.SnippetService, limits config.UploadLimits, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{auths: auths, snippets: snippets, limits: limits, logger: logger}
}

// writeUploadError keeps the upload code in the error field:
//
//	{"error": "LIMIT_FILE_SIZE", "message": "..."}
func writeUploadError(w http.ResponseWriter, err error) {
	var upErr *upload.Error
	if errors.As(err, &upErr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   upErr.Code,
			Message: upErr.Message,
		})
		return
	}
	writeError(w, err)
}

// HandleAvatar stores a new profile picture and points the user's
// avatarUrl at it.
//
// HTTP: POST /api/users/avatar
// FORM: field "avatar", image content types only
func (h *UploadHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	// Cap the whole request body before parsing; a too-large body fails
	// the multipart read instead of filling the disk.
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.AvatarMaxBytes+4096)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeUploadError(w, &upload.Error{Code: upload.CodeUploadError, Message: "missing avatar file"})
		return
	}
	defer file.Close()

	if err := upload.CheckAvatar(header.Header.Get("Content-Type"), header.Size, h.limits.AvatarMaxBytes); err != nil {
		writeUploadError(w, err)
		return
	}

	if err := os.MkdirAll(h.limits.AvatarDir, 0o755); err != nil {
		h.logger.Error("avatar dir create failed", slog.String("error", err.Error()))
		writeUploadError(w, fmt.Errorf("storing avatar: %w", err))
		return
	}

	name := userID + "-" + xid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(h.limits.AvatarDir, name)
	dst, err := os.Create(path)
	if err != nil {
		h.logger.Error("avatar create failed", slog.String("error", err.Error()))
		writeUploadError(w, fmt.Errorf("storing avatar: %w", err))
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		h.logger.Error("avatar write failed", slog.String("error", err.Error()))
		writeUploadError(w, fmt.Errorf("storing avatar: %w", err))
		return
	}

	avatarURL := "/avatars/" + name
	user, err := h.auths.UpdateProfile(r.Context(), userID, service.ProfileUpdate{AvatarURL: &avatarURL})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleCodeFiles turns uploaded source files into snippets: one snippet
// per file, titled by filename, language inferred from the extension.
//
// HTTP: POST /api/code/upload
// FORM: field "files" (repeatable), optional "projectId" and "isPublic"
func (h *UploadHandler) HandleCodeFiles(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	maxBody := h.limits.CodeFileMaxBytes*int64(h.limits.CodeFileMaxCount) + 4096
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(maxBody); err != nil {
		writeUploadError(w, &upload.Error{Code: upload.CodeUploadError, Message: "invalid multipart form"})
		return
	}

	files := r.MultipartForm.File["files"]
	if err := upload.CheckCodeFileCount(len(files), h.limits.CodeFileMaxCount); err != nil {
		writeUploadError(w, err)
		return
	}

	projectID := r.FormValue("projectId")
	isPublic := r.FormValue("isPublic") == "true"

	// Validate every file before creating anything, so a bad third file
	// doesn't leave two snippets behind.
	languages := make([]string, len(files))
	for i, fh := range files {
		lang, err := upload.CheckCodeFile(fh.Filename, fh.Size, h.limits.CodeFileMaxBytes)
		if err != nil {
			writeUploadError(w, err)
			return
		}
		languages[i] = lang
	}

	created := make([]*model.Snippet, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeUploadError(w, &upload.Error{Code: upload.CodeUploadError, Message: "could not read " + fh.Filename})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeUploadError(w, &upload.Error{Code: upload.CodeUploadError, Message: "could not read " + fh.Filename})
			return
		}

		snippet, err := h.snippets.Create(r.Context(), userID, service.CreateSnippetInput{
			ProjectID: projectID,
			Title:     fh.Filename,
			Content:   string(content),
			Language:  languages[i],
			IsPublic:  isPublic,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		// Later files join the project the first one created.
		if projectID == "" {
			projectID = snippet.ProjectID
		}
		created = append(created, snippet)
	}

	writeJSON(w, http.StatusCreated, created)
}
