package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"contactd/internal/contact/models"
	"contactd/internal/platform/config"
)

// SMTP delivers messages through a mail relay.
type SMTP struct {
	to     []string
	from   string
	dialer *gomail.Dialer
	logger *slog.Logger
	// send is swapped in tests.
	send func(*gomail.Message) error
}

func NewSMTP(cfg config.NotifyConfig, logger *slog.Logger) *SMTP {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SMTP{
		to:     recipients(cfg.To),
		from:   cfg.From,
		logger: logger,
	}
	if cfg.SMTPHost != "" {
		s.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		s.send = func(m *gomail.Message) error { return s.dialer.DialAndSend(m) }
	}
	return s
}

// Send dials the relay and delivers msg. gomail has no context support, so
// the dial runs in a goroutine and ctx bounds how long Send waits for it.
func (s *SMTP) Send(ctx context.Context, msg models.OutboundMessage) error {
	if s.send == nil || len(s.to) == 0 || s.from == "" {
		s.logger.WarnContext(ctx, "email config incomplete, skipping email send", "error", errIncompleteConfig)
		return nil
	}

	m := s.buildMessage(msg)

	done := make(chan error, 1)
	go func() {
		done <- s.send(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func (s *SMTP) buildMessage(msg models.OutboundMessage) *gomail.Message {
	rendered := render(msg)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	if rendered.ReplyTo != "" {
		m.SetHeader("Reply-To", rendered.ReplyTo)
	}
	m.SetHeader("Subject", rendered.Subject)
	m.SetBody("text/plain", rendered.Text)
	m.AddAlternative("text/html", rendered.HTML)
	return m
}
