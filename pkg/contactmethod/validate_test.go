package contactmethod_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        contactmethod.CreateInput
		wantValue string
		wantField string
	}{
		{
			name:      "sms normalised to e164",
			in:        input(contactmethod.TypeSMS, "+1 (650) 253-0000"),
			wantValue: "+16502530000",
		},
		{
			name:      "voice without country code",
			in:        input(contactmethod.TypeVoice, "650 253 0000"),
			wantField: "value",
		},
		{
			name:      "email lowercased",
			in:        input(contactmethod.TypeEmail, "Ada@Example.COM"),
			wantValue: "ada@example.com",
		},
		{
			name:      "email with display name",
			in:        input(contactmethod.TypeEmail, "Ada <ada@example.com>"),
			wantField: "value",
		},
		{
			name:      "webhook",
			in:        input(contactmethod.TypeWebhook, "https://hooks.example.com/a?b=c"),
			wantValue: "https://hooks.example.com/a?b=c",
		},
		{
			name:      "webhook relative",
			in:        input(contactmethod.TypeWebhook, "/hooks"),
			wantField: "value",
		},
		{
			name:      "slack member id",
			in:        input(contactmethod.TypeSlackDM, "u01abcdef23"),
			wantValue: "U01ABCDEF23",
		},
		{
			name:      "slack channel id rejected",
			in:        input(contactmethod.TypeSlackDM, "C01ABCDEF23"),
			wantField: "value",
		},
		{
			name:      "unknown type",
			in:        input("PAGER", "123"),
			wantField: "type",
		},
		{
			name: "missing name",
			in: contactmethod.CreateInput{
				UserID: "u1", Type: contactmethod.TypeEmail, Value: "a@example.com",
			},
			wantField: "name",
		},
		{
			name: "missing user",
			in: contactmethod.CreateInput{
				Name: "Work", Type: contactmethod.TypeEmail, Value: "a@example.com",
			},
			wantField: "userID",
		},
		{
			name: "negative delay",
			in: contactmethod.CreateInput{
				UserID: "u1", Name: "Work", Type: contactmethod.TypeEmail, Value: "a@example.com",
				NewUserNotificationRule: &contactmethod.NotificationRuleInput{DelayMinutes: -1},
			},
			wantField: "newUserNotificationRule.delayMinutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := contactmethod.Normalize(tt.in)
			if tt.wantField != "" {
				ves := validator.ExtractValidationErrors(err)
				require.NotNil(t, ves, "expected validation errors, got %v", err)
				assert.True(t, ves.Has(tt.wantField), "fields: %v", ves.Fields())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, out.Value)
		})
	}
}

func TestNormalize_StripsMarkupFromName(t *testing.T) {
	t.Parallel()

	in := input(contactmethod.TypeEmail, "a@example.com")
	in.Name = "  <b>Work</b>   phone "

	out, err := contactmethod.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, "Work phone", out.Name)
}

func TestDraft(t *testing.T) {
	t.Parallel()

	assert.Equal(t, contactmethod.Draft{Name: "", Type: contactmethod.TypeSMS, Value: ""}, contactmethod.DefaultDraft())

	in := contactmethod.Draft{Name: "n", Type: contactmethod.TypeVoice, Value: "v"}.Input("u1")
	assert.Equal(t, contactmethod.CreateInput{
		Name:                    "n",
		Type:                    contactmethod.TypeVoice,
		Value:                   "v",
		UserID:                  "u1",
		NewUserNotificationRule: &contactmethod.NotificationRuleInput{DelayMinutes: 0},
	}, in)
}

func TestParseType(t *testing.T) {
	t.Parallel()

	typ, err := contactmethod.ParseType(" slack_dm ")
	require.NoError(t, err)
	assert.Equal(t, contactmethod.TypeSlackDM, typ)
	assert.Equal(t, "Slack Message", typ.Label())

	_, err = contactmethod.ParseType("fax")
	require.Error(t, err)

	assert.Len(t, contactmethod.Types(), 5)
	assert.True(t, contactmethod.TypeEmail.NeedsVerification())
	assert.False(t, contactmethod.TypeWebhook.NeedsVerification())
}

func input(typ contactmethod.Type, value string) contactmethod.CreateInput {
	return contactmethod.CreateInput{UserID: "u1", Name: "Work", Type: typ, Value: value}
}
