// Package upload validates multipart file uploads before anything touches
// storage: content-type checks for avatars, extension and size limits for
// code files. Violations carry the machine-readable codes the frontend
// switches on.
package upload

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Machine-readable rejection codes. The names follow the multer
// convention so existing clients keep working.
const (
	CodeFileSize       = "LIMIT_FILE_SIZE"
	CodeFileCount      = "LIMIT_FILE_COUNT"
	CodeUnexpectedFile = "LIMIT_UNEXPECTED_FILE"
	CodeUploadError    = "UPLOAD_ERROR"
)

// Error is a rejected upload. Code is one of the constants above.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// imageTypes are the avatar content types accepted.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// codeExtensions is the allowlist for code file uploads, keyed by
// extension with the language it maps to.
var codeExtensions = map[string]string{
	".go":    "go",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".sh":    "shell",
	".sql":   "sql",
	".html":  "html",
	".css":   "css",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".md":    "markdown",
	".txt":   "text",
}

// CheckAvatar validates an avatar upload's declared content type and size.
func CheckAvatar(contentType string, size, maxBytes int64) error {
	if !imageTypes[strings.ToLower(contentType)] {
		return &Error{
			Code:    CodeUnexpectedFile,
			Message: fmt.Sprintf("avatar must be an image (png, jpeg, gif or webp), got %s", contentType),
		}
	}
	if size > maxBytes {
		return &Error{
			Code:    CodeFileSize,
			Message: fmt.Sprintf("avatar exceeds the %d byte limit", maxBytes),
		}
	}
	return nil
}

// CheckCodeFile validates one uploaded code file and returns the language
// its extension maps to.
func CheckCodeFile(filename string, size, maxBytes int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := codeExtensions[ext]
	if !ok {
		return "", &Error{
			Code:    CodeUnexpectedFile,
			Message: fmt.Sprintf("file type %q is not allowed", ext),
		}
	}
	if size > maxBytes {
		return "", &Error{
			Code:    CodeFileSize,
			Message: fmt.Sprintf("%s exceeds the %d byte limit", filename, maxBytes),
		}
	}
	return lang, nil
}

// CheckCodeFileCount enforces the per-request file count cap.
func CheckCodeFileCount(count, max int) error {
	if count == 0 {
		return &Error{Code: CodeUploadError, Message: "no files in upload"}
	}
	if count > max {
		return &Error{
			Code:    CodeFileCount,
			Message: fmt.Sprintf("at most %d files per upload, got %d", max, count),
		}
	}
	return nil
}
