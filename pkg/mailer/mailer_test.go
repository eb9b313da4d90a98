package mailer_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/mailer"
)

type recordingSender struct {
	sent []*mailer.Email
	err  error
}

func (s *recordingSender) Send(_ context.Context, e *mailer.Email) error {
	s.sent = append(s.sent, e)
	return s.err
}

var templates = fstest.MapFS{
	"layouts/base.html": {Data: []byte(`<html><body>{{.Content}}</body></html>`)},
	"code.md":           {Data: []byte("---\nSubject: Your code for {{.Name}}\n---\nUse **{{.Code}}** to verify.\n")},
	"plain.md":          {Data: []byte("No frontmatter {{.Code}}")},
}

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := mailer.New(sender, mailer.NewRenderer(templates, "layouts"), mailer.Config{Layout: "base.html", FallbackSubject: "Notice"})

	err := m.Send(context.Background(), mailer.Message{
		To:       "ada@example.com",
		Template: "code.md",
		Data:     map[string]string{"Name": "Work", "Code": "123456"},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	got := sender.sent[0]
	assert.Equal(t, "Your code for Work", got.Subject)
	assert.Contains(t, got.HTML, "<strong>123456</strong>")
	assert.Contains(t, got.HTML, "<html><body>")
	assert.Contains(t, got.Text, "Use **123456** to verify.")
}

func TestMailer_Send_FallbackSubject(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := mailer.New(sender, mailer.NewRenderer(templates, "layouts"), mailer.Config{Layout: "base.html", FallbackSubject: "Notice"})

	require.NoError(t, m.Send(context.Background(), mailer.Message{To: "a@example.com", Template: "plain.md", Data: map[string]string{"Code": "1"}}))
	assert.Equal(t, "Notice", sender.sent[0].Subject)
}

func TestMailer_Send_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider down")
	m := mailer.New(&recordingSender{err: boom}, mailer.NewRenderer(templates, "layouts"), mailer.Config{Layout: "base.html"})
	ctx := context.Background()

	require.ErrorIs(t, m.Send(ctx, mailer.Message{Template: "code.md"}), mailer.ErrNoRecipient)
	require.ErrorIs(t, m.Send(ctx, mailer.Message{To: "a@example.com", Template: "missing.md"}), mailer.ErrTemplateNotFound)

	err := m.Send(ctx, mailer.Message{To: "a@example.com", Template: "code.md", Data: map[string]string{}})
	require.ErrorIs(t, err, mailer.ErrSendFailed)
	require.ErrorIs(t, err, boom)
}

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tpl, err := mailer.ParseTemplate([]byte("---\nSubject: Hi\nPriority: 2\n---\nBody"))
	require.NoError(t, err)
	assert.Equal(t, "Hi", tpl.Metadata["Subject"])
	assert.Equal(t, 2, tpl.Metadata["Priority"])
	assert.Equal(t, "Body", tpl.Body)

	_, err = mailer.ParseTemplate([]byte("---\nSubject: Hi\nBody"))
	require.ErrorIs(t, err, mailer.ErrInvalidFrontmatter)

	_, err = mailer.ParseTemplate([]byte("---\n: [\n---\nBody"))
	require.ErrorIs(t, err, mailer.ErrInvalidFrontmatter)
}
