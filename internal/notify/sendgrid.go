package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"contactd/internal/contact/models"
	"contactd/internal/platform/config"
)

// DefaultSendGridURL is the v3 mail send endpoint.
const DefaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"

// SendGrid posts messages to the SendGrid v3 API.
type SendGrid struct {
	apiKey     string
	url        string
	to         []string
	from       string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*SendGrid)

func WithHTTPClient(c *http.Client) Option {
	return func(s *SendGrid) {
		s.httpClient = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *SendGrid) {
		s.logger = logger
	}
}

func NewSendGrid(cfg config.NotifyConfig, opts ...Option) *SendGrid {
	s := &SendGrid{
		apiKey:     cfg.SendGridAPIKey,
		url:        cfg.SendGridURL,
		to:         recipients(cfg.To),
		from:       cfg.From,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
	}
	if s.url == "" {
		s.url = DefaultSendGridURL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	ReplyTo          *sgAddress          `json:"reply_to,omitempty"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// Send delivers msg to every configured recipient. Missing API key,
// recipients or sender skip the send with a warning.
func (s *SendGrid) Send(ctx context.Context, msg models.OutboundMessage) error {
	if s.apiKey == "" || len(s.to) == 0 || s.from == "" {
		s.logger.WarnContext(ctx, "email config incomplete, skipping email send", "error", errIncompleteConfig)
		return nil
	}

	rendered := render(msg)
	mail := sgMail{
		From:    sgAddress{Email: s.from},
		Subject: rendered.Subject,
		Content: []sgContent{
			{Type: "text/plain", Value: rendered.Text},
			{Type: "text/html", Value: rendered.HTML},
		},
	}
	if rendered.ReplyTo != "" {
		mail.ReplyTo = &sgAddress{Email: rendered.ReplyTo}
	}
	for _, addr := range s.to {
		mail.Personalizations = append(mail.Personalizations, sgPersonalization{To: []sgAddress{{Email: addr}}})
	}

	b, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("marshal sendgrid mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return fmt.Errorf("sendgrid API error: %d - %s", res.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
