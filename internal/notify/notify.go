// Package notify delivers accepted contact messages to the site owner.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"contactd/internal/contact/models"
	"contactd/internal/contact/sanitize"
	"contactd/internal/platform/config"
)

// Provider names accepted by NOTIFY_PROVIDER.
const (
	ProviderSendGrid = "sendgrid"
	ProviderSMTP     = "smtp"
	ProviderNone     = "none"
)

// Notifier sends one message. Implementations treat incomplete configuration
// as a skip, not an error.
type Notifier interface {
	Send(ctx context.Context, msg models.OutboundMessage) error
}

// New selects a Notifier for cfg.Provider.
func New(cfg config.NotifyConfig, logger *slog.Logger) (Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderSendGrid, "":
		return NewSendGrid(cfg, WithLogger(logger)), nil
	case ProviderSMTP:
		return NewSMTP(cfg, logger), nil
	case ProviderNone:
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unknown notify provider %q", cfg.Provider)
}

// Noop discards every message.
type Noop struct{}

func (Noop) Send(context.Context, models.OutboundMessage) error { return nil }

var errIncompleteConfig = errors.New("notification config incomplete")

// email is the provider-neutral rendering of an OutboundMessage.
type email struct {
	Subject string
	Text    string
	HTML    string
	ReplyTo string
}

func render(msg models.OutboundMessage) email {
	name := sanitize.Text(msg.Name, sanitize.NameMax)
	if name == "" {
		name = "No name"
	}
	subject := sanitize.Text(msg.Subject, models.SubjectMaxLen)
	if subject == "" {
		subject = "New contact form message (no subject)"
	}
	preview := sanitize.Text(msg.Message, sanitize.PreviewMax)

	var text strings.Builder
	text.WriteString("You have received a new contact form submission:\n\n")
	fmt.Fprintf(&text, "Name: %s\n", name)
	fmt.Fprintf(&text, "Email: %s\n", msg.Email)
	fmt.Fprintf(&text, "Subject: %s\n\n", subject)
	fmt.Fprintf(&text, "Message:\n%s\n\n", msg.Message)

	esc := html.EscapeString
	var body strings.Builder
	body.WriteString("<p>You have received a new contact form submission:</p>")
	fmt.Fprintf(&body, "<p><strong>Name:</strong> %s</p>", esc(name))
	fmt.Fprintf(&body, "<p><strong>Email:</strong> %s</p>", esc(msg.Email))
	fmt.Fprintf(&body, "<p><strong>Subject:</strong> %s</p>", esc(subject))
	body.WriteString("<p><strong>Message:</strong></p>")
	fmt.Fprintf(&body, `<pre style="white-space:pre-wrap;font-family:system-ui, sans-serif;">%s</pre>`, esc(msg.Message))
	body.WriteString("<hr />")
	fmt.Fprintf(&body, "<p>Preview:</p><p>%s</p>", esc(preview))

	return email{
		Subject: "New contact form message: " + subject,
		Text:    text.String(),
		HTML:    body.String(),
		ReplyTo: msg.Email,
	}
}

// recipients drops blank entries from a parsed CONTACT_TO list.
func recipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
