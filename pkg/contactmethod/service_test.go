package contactmethod_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

type verifierFunc func(ctx context.Context, cm contactmethod.ContactMethod) error

func (f verifierFunc) RequestVerification(ctx context.Context, cm contactmethod.ContactMethod) error {
	return f(ctx, cm)
}

func newService(t *testing.T, opts ...contactmethod.ServiceOption) (*contactmethod.Service, *contactmethod.MemoryRepository) {
	t.Helper()

	repo := contactmethod.NewMemoryRepository(contactmethod.User{ID: "u1", Name: "Ada"})
	n := 0
	opts = append([]contactmethod.ServiceOption{
		contactmethod.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		contactmethod.WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	}, opts...)
	return contactmethod.NewService(repo, opts...), repo
}

func TestService_CreateUserContactMethod(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var requested []string
	svc, _ := newService(t, contactmethod.WithVerifier(verifierFunc(func(_ context.Context, cm contactmethod.ContactMethod) error {
		requested = append(requested, cm.ID)
		return nil
	})))

	cm, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{
		Name: "Mobile", Type: contactmethod.TypeSMS, Value: "+1 650 253 0000",
	}.Input("u1"))
	require.NoError(t, err)

	assert.Equal(t, "id-1", cm.ID)
	assert.Equal(t, "+16502530000", cm.Value)
	assert.True(t, cm.Pending)
	assert.Equal(t, []string{"id-1"}, requested)

	rules, err := svc.ListNotificationRules(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "id-1", rules[0].ContactMethodID)
	assert.Equal(t, 0, rules[0].DelayMinutes)

	methods, err := svc.ListContactMethods(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, methods, 1)
}

func TestService_CreateWithoutRule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.CreateUserContactMethod(ctx, contactmethod.CreateInput{
		UserID: "u1", Name: "Hook", Type: contactmethod.TypeWebhook, Value: "https://example.com/h",
	})
	require.NoError(t, err)

	rules, err := svc.ListNotificationRules(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestService_CreateErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "Work", Type: contactmethod.TypeEmail, Value: "a@example.com"}.Input("u1"))
	require.NoError(t, err)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "work", Type: contactmethod.TypeEmail, Value: "b@example.com"}.Input("u1"))
		assert.True(t, validator.ExtractValidationErrors(err).Has("name"))
	})

	t.Run("duplicate value", func(t *testing.T) {
		_, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "Home", Type: contactmethod.TypeEmail, Value: "A@example.com"}.Input("u1"))
		assert.True(t, validator.ExtractValidationErrors(err).Has("value"))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "x", Type: contactmethod.TypeEmail, Value: "c@example.com"}.Input("nobody"))
		require.ErrorIs(t, err, contactmethod.ErrUserNotFound)
		assert.False(t, validator.IsValidationError(err))
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "x", Type: contactmethod.TypeSMS, Value: "call me"}.Input("u1"))
		assert.True(t, validator.ExtractValidationErrors(err).Has("value"))
	})
}

func TestService_VerifierFailureDoesNotFailCreate(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, contactmethod.WithVerifier(verifierFunc(func(context.Context, contactmethod.ContactMethod) error {
		return errors.New("queue unavailable")
	})))

	_, err := svc.CreateUserContactMethod(context.Background(), contactmethod.Draft{Name: "Mail", Type: contactmethod.TypeEmail, Value: "a@example.com"}.Input("u1"))
	require.NoError(t, err)
}

func TestService_Verify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newService(t)
	cm, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "Mail", Type: contactmethod.TypeEmail, Value: "a@example.com"}.Input("u1"))
	require.NoError(t, err)

	require.NoError(t, repo.SaveVerificationCode(ctx, contactmethod.VerificationCode{
		ContactMethodID: cm.ID,
		Code:            "123456",
		ExpiresAt:       time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC),
	}))

	require.ErrorIs(t, svc.Verify(ctx, "someone-else", cm.ID, "123456"), contactmethod.ErrNotFound)
	assert.True(t, validator.ExtractValidationErrors(svc.Verify(ctx, "u1", cm.ID, "12ab")).Has("code"))
	assert.True(t, validator.ExtractValidationErrors(svc.Verify(ctx, "u1", cm.ID, "654321")).Has("code"))

	require.NoError(t, svc.Verify(ctx, "u1", cm.ID, "123456"))

	got, err := repo.GetContactMethod(ctx, cm.ID)
	require.NoError(t, err)
	assert.False(t, got.Pending)

	// already verified
	require.NoError(t, svc.Verify(ctx, "u1", cm.ID, ""))
}

func TestService_SendVerificationCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var sent []string
	resender := verifierFunc(func(_ context.Context, cm contactmethod.ContactMethod) error {
		sent = append(sent, cm.ID)
		return nil
	})

	t.Run("pending method", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t, contactmethod.WithResender(resender))
		cm, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "Mail", Type: contactmethod.TypeEmail, Value: "a@example.com"}.Input("u1"))
		require.NoError(t, err)

		got, err := svc.SendVerificationCode(ctx, "u1", cm.ID)
		require.NoError(t, err)
		assert.Equal(t, cm.ID, got.ID)
		assert.Equal(t, []string{cm.ID}, sent)

		_, err = svc.SendVerificationCode(ctx, "u2", cm.ID)
		assert.ErrorIs(t, err, contactmethod.ErrNotFound)
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService(t)
		cm, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "Mail", Type: contactmethod.TypeEmail, Value: "a@example.com"}.Input("u1"))
		require.NoError(t, err)

		_, err = svc.SendVerificationCode(ctx, "u1", cm.ID)
		assert.ErrorIs(t, err, contactmethod.ErrVerificationUnavailable)
	})

	t.Run("active method is a no-op", func(t *testing.T) {
		t.Parallel()

		failing := verifierFunc(func(context.Context, contactmethod.ContactMethod) error {
			return errors.New("must not be called")
		})
		svc, _ := newService(t, contactmethod.WithResender(failing))
		cm, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "Hook", Type: contactmethod.TypeWebhook, Value: "https://example.com/hook"}.Input("u1"))
		require.NoError(t, err)
		require.False(t, cm.Pending)

		_, err = svc.SendVerificationCode(ctx, "u1", cm.ID)
		require.NoError(t, err)
	})
}

func TestMemoryRepository_DeleteExpiredVerificationCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newService(t)
	cm, err := svc.CreateUserContactMethod(ctx, contactmethod.Draft{Name: "Mail", Type: contactmethod.TypeEmail, Value: "a@example.com"}.Input("u1"))
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveVerificationCode(ctx, contactmethod.VerificationCode{ContactMethodID: cm.ID, Code: "111111", ExpiresAt: now}))

	n, err := repo.DeleteExpiredVerificationCodes(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := repo.ConsumeVerificationCode(ctx, cm.ID, "111111", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}
