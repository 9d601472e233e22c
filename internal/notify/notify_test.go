package notify

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactd/internal/contact/models"
	"contactd/internal/platform/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleMessage() models.OutboundMessage {
	return models.OutboundMessage{
		Name:      "Ada <script>",
		Email:     "ada@example.com",
		Subject:   "Quote & timeline",
		Message:   "Hello,\nI need a <b>website</b>.",
		Language:  "en",
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cases := map[string]any{
		"":         &SendGrid{},
		"sendgrid": &SendGrid{},
		"SMTP":     &SMTP{},
		"none":     Noop{},
	}
	for provider, want := range cases {
		n, err := New(config.NotifyConfig{Provider: provider}, discardLogger())
		require.NoError(t, err, provider)
		assert.IsType(t, want, n, provider)
	}

	_, err := New(config.NotifyConfig{Provider: "pigeon"}, discardLogger())
	assert.ErrorContains(t, err, "pigeon")
}

func TestRender(t *testing.T) {
	e := render(sampleMessage())

	assert.Equal(t, "New contact form message: Quote & timeline", e.Subject)
	assert.Equal(t, "ada@example.com", e.ReplyTo)
	assert.Contains(t, e.Text, "Name: Ada <script>\n")
	assert.Contains(t, e.Text, "Message:\nHello,\nI need a <b>website</b>.")

	assert.Contains(t, e.HTML, "<strong>Name:</strong> Ada &lt;script&gt;")
	assert.Contains(t, e.HTML, "Quote &amp; timeline")
	assert.Contains(t, e.HTML, "I need a &lt;b&gt;website&lt;/b&gt;.")
	assert.NotContains(t, e.HTML, "<script>")
	assert.Contains(t, e.HTML, "<p>Preview:</p><p>Hello, I need", "preview has control characters replaced")
}

func TestRenderFallbacks(t *testing.T) {
	e := render(models.OutboundMessage{Email: "a@example.com", Message: strings.Repeat("m", 500)})

	assert.Equal(t, "New contact form message: New contact form message (no subject)", e.Subject)
	assert.Contains(t, e.Text, "Name: No name\n")
	assert.Contains(t, e.HTML, "<p>"+strings.Repeat("m", 200)+"</p>")
}
