package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	texttemplate "text/template"
)

// Config is embedded in the app config.
type Config struct {
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	Layout          string `env:"MAILER_LAYOUT" envDefault:"base.html"`
}

// Email is a fully rendered message.
type Email struct {
	Tags    map[string]string
	Subject string
	HTML    string
	Text    string
	From    string
	To      []string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Mailer renders markdown templates and hands the result to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	cfg      Config
}

func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, cfg: cfg}
}

// Message describes a templated email.
type Message struct {
	Data     any
	Tags     map[string]string
	To       string
	Template string
	// Subject overrides the template's frontmatter subject.
	Subject string
}

// Send renders msg and delivers it. The subject comes from msg.Subject, then
// the template frontmatter, then the configured fallback, and is itself
// executed as a template against msg.Data.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	res, err := m.renderer.Render(m.cfg.Layout, msg.Template, msg.Data)
	if err != nil {
		return err
	}

	subject := msg.Subject
	if subject == "" {
		subject, _ = res.Metadata["Subject"].(string)
	}
	if subject == "" {
		subject = m.cfg.FallbackSubject
	}
	subject, err = executeText("subject", subject, msg.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}
	if subject == "" {
		return ErrNoSubject
	}

	email := &Email{To: []string{msg.To}, Subject: subject, HTML: res.HTML, Text: res.Text, Tags: msg.Tags}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func executeText(name, text string, data any) (string, error) {
	tmpl, err := texttemplate.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, email *Email) error {
	s.Log.InfoContext(ctx, "email not delivered, no provider configured",
		slog.String("to", fmt.Sprint(email.To)),
		slog.String("subject", email.Subject),
		slog.String("text", email.Text),
	)
	return nil
}
