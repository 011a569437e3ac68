package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", apperror.ValidationFailed("email", "email address is not valid"), 400, "validation_error"},
		{"unauthorized", apperror.Unauthorized("invalid email or password"), 401, "unauthorized"},
		{"forbidden", apperror.Forbidden("account is suspended"), 403, "forbidden"},
		{"not found", apperror.NotFound("snippet", "abc123"), 404, "not_found"},
		{"conflict", apperror.Conflict("user", "email taken"), 409, "conflict"},
		{"wrapped sentinel", errors.Join(errors.New("outer"), apperror.NotFound("user", "u1")), 404, "not_found"},
		{"unknown error", errors.New("database exploded"), 500, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantError, body.Error)
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused on 10.0.0.5"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "An internal error occurred", body.Message)
	assert.NotContains(t, body.Message, "10.0.0.5")
}

func TestWriteError_ValidationCarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperror.ValidationFailed("username", "username must be between 3 and 30 characters"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "username", body.Field)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	var p payload
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"hello"}`))
	require.NoError(t, decodeJSON(req, &p))
	assert.Equal(t, "hello", p.Title)

	// Unknown fields are rejected so client typos fail loudly.
	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"titel":"oops"}`))
	err := decodeJSON(req, &payload{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`not json`))
	assert.ErrorIs(t, decodeJSON(req, &payload{}), apperror.ErrValidation)
}

func TestPagination(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=25&offset=50", nil)
	limit, offset := pagination(req)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 50, offset)

	// Missing or garbage params fall through to zero; the service clamps.
	req = httptest.NewRequest("GET", "/?limit=abc", nil)
	limit, offset = pagination(req)
	assert.Equal(t, 0, limit)
	assert.Equal(t, 0, offset)
}
