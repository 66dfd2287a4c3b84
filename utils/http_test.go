package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteJSON(w, http.StatusCreated, map[string]bool{"ok": true})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestWriteJSON_NilBody(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteJSON(w, http.StatusOK, nil))
	assert.Empty(t, w.Body.String())
}

func TestWriteData(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteData(w, []string{}))
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter) error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"bad request", func(w http.ResponseWriter) error { return WriteBadRequest(w, "bad body", nil) }, 400, "bad_request", "bad body"},
		{"unauthorized default", func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") }, 401, "unauthorized", "Authentication required"},
		{"forbidden default", func(w http.ResponseWriter) error { return WriteForbidden(w, "") }, 403, "forbidden", "Access forbidden"},
		{"not found", func(w http.ResponseWriter) error { return WriteNotFound(w, "") }, 404, "not_found", "Resource not found"},
		{"too many requests", func(w http.ResponseWriter) error { return WriteTooManyRequests(w, "", nil) }, 429, "rate_limit_exceeded", "Rate limit exceeded"},
		{"service unavailable", func(w http.ResponseWriter) error { return WriteServiceUnavailable(w, "") }, 503, "service_unavailable", "Service temporarily unavailable"},
		{"internal", func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") }, 500, "internal_error", "Internal server error"},
		{"unmapped status", func(w http.ResponseWriter) error { return WriteError(w, http.StatusTeapot, "tea", nil) }, 418, "internal_error", "tea"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestWriteTooManyRequests_Details(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteTooManyRequests(w, "slow down", map[string]interface{}{"limit": 30}))

	resp := decodeError(t, w)
	assert.Equal(t, float64(30), resp.Details["limit"])
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Content string `json:"content"`
	}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`))
		var b body

		require.NoError(t, DecodeJSON(r, &b))
		assert.Equal(t, "hi", b.Content)
	})

	t.Run("empty", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var b body

		err := DecodeJSON(r, &b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":`))
		var b body

		err := DecodeJSON(r, &b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON body")
	})

	t.Run("accepts bodies up to 5MB", func(t *testing.T) {
		content := strings.Repeat("a", 4<<20)
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"`+content+`"}`))
		var b body

		require.NoError(t, DecodeJSON(r, &b))
		assert.Len(t, b.Content, 4<<20)
	})

	t.Run("rejects bodies over 5MB", func(t *testing.T) {
		content := strings.Repeat("a", 5<<20)
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"`+content+`"}`))
		var b body

		err := DecodeJSON(r, &b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON body")
	})
}
