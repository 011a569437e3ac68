package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/config"
	"github.com/glutton-su/DevSpace-sub002/internal/repository/sqlite"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	auths := service.NewAuthService(db, tokens, passwords, config.PasswordPolicy{MinLength: 6}, logger)
	return NewAuthHandler(auths, nil, logger)
}

// The clients read user, accessToken and refreshToken from the top level
// of every auth response, so the wire shape is contract, not detail.
func TestAuthEndpoints_WireShape(t *testing.T) {
	h := newAuthHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"username":"wireshape","email":"wireshape@example.com","password":"secret1"}`))
	h.HandleRegister(rec, req)
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "user")
	assert.Contains(t, body, "accessToken")
	assert.Contains(t, body, "refreshToken")

	var refreshToken string
	require.NoError(t, json.Unmarshal(body["refreshToken"], &refreshToken))
	require.NotEmpty(t, refreshToken)

	// Login returns the same shape.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"wireshape@example.com","password":"secret1"}`))
	h.HandleLogin(rec, req)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	body = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "user")
	assert.Contains(t, body, "accessToken")
	assert.Contains(t, body, "refreshToken")

	// And the refresh exchange accepts the issued token and answers in kind.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/auth/refresh",
		strings.NewReader(`{"refreshToken":"`+refreshToken+`"}`))
	h.HandleRefresh(rec, req)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	body = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "accessToken")
	assert.Contains(t, body, "refreshToken")

	// Hashes never leave the service.
	assert.NotContains(t, rec.Body.String(), "password_hash")
}
