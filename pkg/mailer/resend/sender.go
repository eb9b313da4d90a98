// Package resend delivers mailer emails through the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/oncallkit/notifydesk/pkg/mailer"
)

// Config is embedded in the app config.
type Config struct {
	APIKey    string `env:"RESEND_API_KEY"`
	FromEmail string `env:"RESEND_FROM_EMAIL" envDefault:"alerts@notifydesk.local"`
	FromName  string `env:"RESEND_FROM_NAME" envDefault:"notifydesk"`
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool { return c.APIKey != "" }

// From formats the default sender address.
func (c Config) From() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}

// Sender implements mailer.Sender.
type Sender struct {
	client *resend.Client
	cfg    Config
}

func New(cfg Config) *Sender {
	return &Sender{client: resend.NewClient(cfg.APIKey), cfg: cfg}
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if _, err := s.client.Emails.SendWithContext(ctx, request(s.cfg, email)); err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	return nil
}

func request(cfg Config, email *mailer.Email) *resend.SendEmailRequest {
	from := email.From
	if from == "" {
		from = cfg.From()
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}
	for name, value := range email.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}
	return req
}

var _ mailer.Sender = (*Sender)(nil)
