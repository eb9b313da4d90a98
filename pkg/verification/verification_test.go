package verification_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/job"
	"github.com/oncallkit/notifydesk/pkg/logger"
	"github.com/oncallkit/notifydesk/pkg/mailer"
	"github.com/oncallkit/notifydesk/pkg/verification"
)

type recordingSender struct {
	codes map[string]string
	err   error
}

func (s *recordingSender) SendCode(_ context.Context, cm contactmethod.ContactMethod, code string) error {
	if s.codes == nil {
		s.codes = make(map[string]string)
	}
	s.codes[cm.ID] = code
	return s.err
}

type recordingMail struct {
	sent []*mailer.Email
}

func (s *recordingMail) Send(_ context.Context, e *mailer.Email) error {
	s.sent = append(s.sent, e)
	return nil
}

func createPending(t *testing.T, repo *contactmethod.MemoryRepository, opts ...contactmethod.ServiceOption) *contactmethod.ContactMethod {
	t.Helper()

	svc := contactmethod.NewService(repo, opts...)
	cm, err := svc.CreateUserContactMethod(context.Background(), contactmethod.Draft{
		Name: "Work", Type: contactmethod.TypeEmail, Value: "ada@example.com",
	}.Input("u1"))
	require.NoError(t, err)
	require.True(t, cm.Pending)
	return cm
}

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^\d{6}$`)
	for range 50 {
		code, err := verification.GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestInline_VerifiesWithDeliveredCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := contactmethod.NewMemoryRepository(contactmethod.User{ID: "u1"})
	sender := &recordingSender{}
	task := verification.NewSendTask(repo, sender, logger.NewNope())

	svc := contactmethod.NewService(repo, contactmethod.WithVerifier(verification.Inline{Task: task}))
	cm, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{
		Name: "Work", Type: contactmethod.TypeEmail, Value: "ada@example.com",
	}.Input("u1"))
	require.NoError(t, err)

	code, ok := sender.codes[cm.ID]
	require.True(t, ok, "code was not sent")
	require.NoError(t, svc.Verify(ctx, "u1", cm.ID, code))

	got, err := repo.GetContactMethod(ctx, cm.ID)
	require.NoError(t, err)
	assert.False(t, got.Pending)
}

func TestSendTask_SkipsActiveAndMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := contactmethod.NewMemoryRepository(contactmethod.User{ID: "u1"})
	sender := &recordingSender{}
	task := verification.NewSendTask(repo, sender, logger.NewNope())

	svc := contactmethod.NewService(repo)
	hook, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{
		Name: "Hook", Type: contactmethod.TypeWebhook, Value: "https://example.com/h",
	}.Input("u1"))
	require.NoError(t, err)

	require.NoError(t, task.Handle(ctx, verification.Payload{ContactMethodID: hook.ID}))
	require.NoError(t, task.Handle(ctx, verification.Payload{ContactMethodID: "missing"}))
	assert.Empty(t, sender.codes)
}

func TestSendTask_SenderError(t *testing.T) {
	t.Parallel()

	repo := contactmethod.NewMemoryRepository(contactmethod.User{ID: "u1"})
	cm := createPending(t, repo)

	task := verification.NewSendTask(repo, &recordingSender{err: errors.New("boom")}, logger.NewNope())
	err := task.Handle(context.Background(), verification.Payload{ContactMethodID: cm.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExpireTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := contactmethod.NewMemoryRepository(contactmethod.User{ID: "u1"})
	cm := createPending(t, repo)
	require.NoError(t, repo.SaveVerificationCode(ctx, contactmethod.VerificationCode{
		ContactMethodID: cm.ID,
		Code:            "123456",
		ExpiresAt:       time.Now().Add(-time.Minute),
	}))

	task := verification.NewExpireTask(repo, logger.NewNope())
	assert.Equal(t, verification.ExpireTaskName, task.Name())
	assert.Equal(t, "*/15 * * * *", task.Schedule())
	require.NoError(t, task.Handle(ctx))

	n, err := repo.DeleteExpiredVerificationCodes(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMailSender(t *testing.T) {
	t.Parallel()

	mail := &recordingMail{}
	m := mailer.New(mail, mailer.NewRenderer(verification.Templates(), "layouts"), mailer.Config{Layout: "base.html"})

	err := verification.MailSender{Mailer: m}.SendCode(context.Background(), contactmethod.ContactMethod{
		ID: "cm1", Name: "Work", Type: contactmethod.TypeEmail, Value: "ada@example.com",
	}, "042917")
	require.NoError(t, err)
	require.Len(t, mail.sent, 1)

	got := mail.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, got.To)
	assert.Equal(t, "Verify Work", got.Subject)
	assert.Contains(t, got.HTML, "042917")
	assert.Contains(t, got.Text, "15 minutes")
}

func TestByType(t *testing.T) {
	t.Parallel()

	email, other := &recordingSender{}, &recordingSender{}
	s := verification.ByType{
		Senders: map[contactmethod.Type]verification.Sender{contactmethod.TypeEmail: email},
		Default: other,
	}

	ctx := context.Background()
	require.NoError(t, s.SendCode(ctx, contactmethod.ContactMethod{ID: "a", Type: contactmethod.TypeEmail}, "111111"))
	require.NoError(t, s.SendCode(ctx, contactmethod.ContactMethod{ID: "b", Type: contactmethod.TypeSMS}, "222222"))

	assert.Equal(t, map[string]string{"a": "111111"}, email.codes)
	assert.Equal(t, map[string]string{"b": "222222"}, other.codes)
}

type recordingEnqueuer struct {
	names []string
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, name string, _ any, _ ...job.EnqueueOption) error {
	e.names = append(e.names, name)
	return nil
}

func (e *recordingEnqueuer) EnqueueTx(_ context.Context, _ pgx.Tx, name string, _ any, _ ...job.EnqueueOption) error {
	e.names = append(e.names, name)
	return nil
}

func TestAfterCreate(t *testing.T) {
	t.Parallel()

	enq := &recordingEnqueuer{}
	hook := verification.AfterCreate(enq)

	ctx := context.Background()
	require.NoError(t, hook(ctx, nil, contactmethod.ContactMethod{ID: "a", Pending: true}))
	require.NoError(t, hook(ctx, nil, contactmethod.ContactMethod{ID: "b"}))

	assert.Equal(t, []string{verification.SendTaskName}, enq.names)
}

func TestQueue(t *testing.T) {
	t.Parallel()

	enq := &recordingEnqueuer{}
	v := verification.Queue{Enqueuer: enq}

	require.NoError(t, v.RequestVerification(context.Background(), contactmethod.ContactMethod{ID: "a", Pending: true}))
	assert.Equal(t, []string{verification.SendTaskName}, enq.names)
}
