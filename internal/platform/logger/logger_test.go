package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "json", slog.LevelInfo).Info("hello", "k", "v")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("level filters lower records", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "text", slog.LevelWarn).Info("hidden")
		assert.Empty(t, buf.String())
	})
}
