package verification

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/mailer"
)

//go:embed emails
var emails embed.FS

// CodeTemplate is the email template carrying the verification code.
const CodeTemplate = "verification_code.md"

// Templates returns the embedded email templates with layouts under "layouts".
func Templates() fs.FS {
	sub, err := fs.Sub(emails, "emails")
	if err != nil {
		panic(err)
	}
	return sub
}

// Sender delivers a verification code to the destination of cm.
type Sender interface {
	SendCode(ctx context.Context, cm contactmethod.ContactMethod, code string) error
}

// MailSender emails codes using the verification_code template.
type MailSender struct {
	Mailer *mailer.Mailer
}

func (s MailSender) SendCode(ctx context.Context, cm contactmethod.ContactMethod, code string) error {
	return s.Mailer.Send(ctx, mailer.Message{
		To:       cm.Value,
		Template: CodeTemplate,
		Tags:     map[string]string{"category": "verification"},
		Data: map[string]any{
			"Name": cm.Name,
			"Code": code,
			"TTL":  int(CodeTTL.Minutes()),
		},
	})
}

// LogSender logs the code instead of delivering it.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) SendCode(ctx context.Context, cm contactmethod.ContactMethod, code string) error {
	s.Log.InfoContext(ctx, "verification code not delivered, no provider for type",
		slog.String("contact_method_id", cm.ID),
		slog.String("type", string(cm.Type)),
		slog.String("code", code),
	)
	return nil
}

// ByType routes codes by contact method type and falls back to Default.
type ByType struct {
	Senders map[contactmethod.Type]Sender
	Default Sender
}

func (s ByType) SendCode(ctx context.Context, cm contactmethod.ContactMethod, code string) error {
	if sender, ok := s.Senders[cm.Type]; ok {
		return sender.SendCode(ctx, cm, code)
	}
	return s.Default.SendCode(ctx, cm, code)
}
