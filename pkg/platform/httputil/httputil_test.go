package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	t.Run("message only omits issues", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, http.StatusInternalServerError, "Server error. Please try again later.", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Server error. Please try again later.", body["error"])
		assert.NotContains(t, body, "issues")
	})

	t.Run("issues are included", func(t *testing.T) {
		w := httptest.NewRecorder()
		issues := []map[string]string{{"path": "email", "message": "Invalid email"}}
		WriteError(w, http.StatusBadRequest, "Validation failed", issues)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Validation failed","issues":[{"path":"email","message":"Invalid email"}]}`, w.Body.String())
	})
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, OKResponse{OK: true})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
