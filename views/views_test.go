package views_test

import (
	"bytes"
	"context"
	"io/fs"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/validator"
	"github.com/oncallkit/notifydesk/views"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestContactMethodCreateDialog(t *testing.T) {
	t.Parallel()

	html := render(t, views.ContactMethodCreateDialog(views.CreateDialogProps{
		DialogID:       "d1",
		UserID:         "u 1",
		Draft:          contactmethod.Draft{Name: `<script>x</script>`, Type: contactmethod.TypeEmail, Value: "a@example.com"},
		FieldErrors:    validator.NewFieldError("value", "must be a valid email address"),
		NonFieldErrors: []string{"try again"},
	}))

	assert.Contains(t, html, `hx-post="/users/u%201/contact-methods"`)
	assert.Contains(t, html, `hx-post="/users/u%201/contact-methods/new/change"`)
	assert.Contains(t, html, `hx-post="/users/u%201/contact-methods/new/cancel"`)
	assert.Contains(t, html, `hx-sync="this:drop"`)
	assert.Contains(t, html, `value="&lt;script&gt;x&lt;/script&gt;"`)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `<option value="EMAIL" selected>Email</option>`)
	assert.Contains(t, html, `<p class="field-error" id="value-error">must be a valid email address</p>`)
	assert.Contains(t, html, `<p class="dialog-error">try again</p>`)
	assert.Contains(t, html, `placeholder="name@example.com"`)
	assert.Contains(t, html, `<div class="field has-error"><label for="value">`)
	assert.Contains(t, html, `<div class="field"><label for="name">Name</label>`)
	assert.Contains(t, html, `<input type="hidden" name="dialog_id" value="d1">`)
}

func TestFormDialog_Loading(t *testing.T) {
	t.Parallel()

	html := render(t, views.FormDialog(views.FormDialogProps{
		Title:   "T",
		Loading: true,
		Form:    views.Empty(),
	}))
	assert.Contains(t, html, `aria-busy="true"`)
	assert.Contains(t, html, `class="spinner htmx-indicator is-loading"`)
	assert.Contains(t, html, `<button type="submit" class="button primary" disabled>Submit</button>`)
}

func TestContactMethodList(t *testing.T) {
	t.Parallel()

	props := views.ListProps{
		UserID: "u1",
		Methods: []contactmethod.ContactMethod{
			{ID: "cm1", Name: "Mail", Type: contactmethod.TypeEmail, Value: "a@example.com", Pending: true},
			{ID: "cm2", Name: "Hook", Type: contactmethod.TypeWebhook, Value: "https://example.com/h", Disabled: true},
		},
		Rules: []contactmethod.NotificationRule{
			{ID: "nr1", ContactMethodID: "cm1", DelayMinutes: 0},
			{ID: "nr2", ContactMethodID: "cm2", DelayMinutes: 5},
			{ID: "nr3", ContactMethodID: "gone", DelayMinutes: 1},
		},
		OOB: true,
	}

	cm := render(t, views.ContactMethodList(props))
	assert.Contains(t, cm, `<section id="cm-list"`)
	assert.Contains(t, cm, `hx-swap-oob="true"`)
	assert.Contains(t, cm, `hx-post="/users/u1/contact-methods/cm1/verify"`)
	assert.Contains(t, cm, `hx-post="/users/u1/contact-methods/cm1/send-code"`)
	assert.NotContains(t, cm, "/cm2/verify")
	assert.Contains(t, cm, "Disabled")

	nr := render(t, views.NotificationRuleList(props))
	assert.Contains(t, nr, "Immediately notify me via Mail (Email)")
	assert.Contains(t, nr, "After 5 minutes notify me via Hook (Webhook)")
	assert.Contains(t, nr, "After 1 minute notify me via unknown contact method")

	props.OOB = false
	props.Methods, props.Rules = nil, nil
	assert.Contains(t, render(t, views.ContactMethodList(props)), "No contact methods")
	assert.NotContains(t, render(t, views.NotificationRuleList(props)), "hx-swap-oob")
}

func TestUserPage(t *testing.T) {
	t.Parallel()

	html := render(t, views.UserPage(views.UserPageProps{
		User:    contactmethod.User{ID: "u1", Name: "Ada"},
		Version: "v1.2.3",
	}))
	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "<title>Ada | notifydesk</title>")
	assert.Contains(t, html, `data-cy="add-contact-method"`)
	assert.Contains(t, html, `hx-get="/users/u1/contact-methods/new"`)
	assert.Contains(t, html, "notifydesk v1.2.3")
}

func TestErrorContent(t *testing.T) {
	t.Parallel()

	html := render(t, views.ErrorContent(404, "Contact method not found."))
	assert.Contains(t, html, "404 Not Found")
	assert.Contains(t, html, "Contact method not found.")
}

func TestStatic(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"static/app.css", "static/app.js"} {
		_, err := fs.Stat(views.Static(), name)
		assert.NoError(t, err, name)
	}
}
