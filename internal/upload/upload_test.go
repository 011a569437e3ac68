package upload

import (
	"errors"
	"testing"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var uerr *Error
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *upload.Error, got %T (%v)", err, err)
	}
	if uerr.Code != code {
		t.Fatalf("got code %q, want %q", uerr.Code, code)
	}
}

func TestCheckAvatar(t *testing.T) {
	if err := CheckAvatar("image/png", 1024, 2048); err != nil {
		t.Fatalf("valid avatar rejected: %v", err)
	}
	if err := CheckAvatar("IMAGE/PNG", 1024, 2048); err != nil {
		t.Fatalf("content type must be case-insensitive: %v", err)
	}

	assertCode(t, CheckAvatar("application/pdf", 1024, 2048), CodeUnexpectedFile)
	assertCode(t, CheckAvatar("image/png", 4096, 2048), CodeFileSize)
}

func TestCheckCodeFile(t *testing.T) {
	tests := []struct {
		filename string
		wantLang string
	}{
		{"main.go", "go"},
		{"App.TSX", "typescript"},
		{"script.py", "python"},
		{"notes.md", "markdown"},
		{"config.yml", "yaml"},
	}
	for _, tc := range tests {
		lang, err := CheckCodeFile(tc.filename, 100, 1024)
		if err != nil {
			t.Fatalf("CheckCodeFile(%q): %v", tc.filename, err)
		}
		if lang != tc.wantLang {
			t.Fatalf("CheckCodeFile(%q) = %q, want %q", tc.filename, lang, tc.wantLang)
		}
	}

	_, err := CheckCodeFile("malware.exe", 100, 1024)
	assertCode(t, err, CodeUnexpectedFile)

	_, err = CheckCodeFile("noextension", 100, 1024)
	assertCode(t, err, CodeUnexpectedFile)

	_, err = CheckCodeFile("big.go", 2048, 1024)
	assertCode(t, err, CodeFileSize)
}

func TestCheckCodeFileCount(t *testing.T) {
	if err := CheckCodeFileCount(3, 5); err != nil {
		t.Fatalf("count within limit rejected: %v", err)
	}
	assertCode(t, CheckCodeFileCount(0, 5), CodeUploadError)
	assertCode(t, CheckCodeFileCount(6, 5), CodeFileCount)
}
