package views

import (
	"embed"
	"io/fs"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/a-h/templ"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

// Element ids shared by handlers for targeting and out-of-band swaps.
const (
	DialogContainerID      = "dialog"
	ContactMethodListID    = "cm-list"
	NotificationRuleListID = "nr-list"
)

//go:embed static
var static embed.FS

// Static holds the page assets in its static/ directory.
func Static() fs.FS {
	return static
}

// Empty renders nothing. Swapping it into the dialog container closes the
// dialog.
func Empty() templ.Component {
	return templ.NopComponent
}

// FormDialogProps describes the modal shell around a form.
type FormDialogProps struct {
	Title       string
	SubmitURL   string
	CancelURL   string
	SubmitLabel string
	// Hidden inputs sent with every request made from the form.
	Hidden  map[string]string
	Errors  []string
	Form    templ.Component
	Loading bool
}

func (p FormDialogProps) submitLabel() string {
	if p.SubmitLabel == "" {
		return "Submit"
	}
	return p.SubmitLabel
}

// ContactMethodFormProps drives the create form fields.
type ContactMethodFormProps struct {
	Draft     contactmethod.Draft
	Errors    validator.ValidationErrors
	ChangeURL string
	Disabled  bool
}

// CreateDialogProps is the render state of a contact method create dialog.
type CreateDialogProps struct {
	DialogID       string
	UserID         string
	Draft          contactmethod.Draft
	FieldErrors    validator.ValidationErrors
	NonFieldErrors []string
	Loading        bool
}

func (p CreateDialogProps) dialog() FormDialogProps {
	return FormDialogProps{
		Title:     "Create New Contact Method",
		SubmitURL: ContactMethodsURL(p.UserID),
		CancelURL: NewContactMethodURL(p.UserID) + "/cancel",
		Hidden:    map[string]string{"dialog_id": p.DialogID},
		Errors:    p.NonFieldErrors,
		Loading:   p.Loading,
		Form: ContactMethodForm(ContactMethodFormProps{
			Draft:     p.Draft,
			Errors:    p.FieldErrors,
			ChangeURL: NewContactMethodURL(p.UserID) + "/change",
			Disabled:  p.Loading,
		}),
	}
}

// ListProps feeds both list partials. OOB marks the root element for an
// out-of-band swap.
type ListProps struct {
	UserID  string
	Methods []contactmethod.ContactMethod
	Rules   []contactmethod.NotificationRule
	OOB     bool
}

type UserPageProps struct {
	User    contactmethod.User
	Methods []contactmethod.ContactMethod
	Rules   []contactmethod.NotificationRule
	Version string
}

func (p UserPageProps) lists() ListProps {
	return ListProps{UserID: p.User.ID, Methods: p.Methods, Rules: p.Rules}
}

// RuleSummary describes when a rule fires.
func RuleSummary(delay int, target string) string {
	if target == "" {
		target = "unknown contact method"
	}
	switch delay {
	case 0:
		return "Immediately notify me via " + target
	case 1:
		return "After 1 minute notify me via " + target
	}
	return "After " + strconv.Itoa(delay) + " minutes notify me via " + target
}

// ruleTarget names the contact method a rule points at.
func ruleTarget(methods []contactmethod.ContactMethod, id string) string {
	for _, cm := range methods {
		if cm.ID == id {
			return cm.Name + " (" + cm.Type.Label() + ")"
		}
	}
	return ""
}

func statusLine(code int) string {
	return strconv.Itoa(code) + " " + http.StatusText(code)
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func UserURL(userID string) string {
	return "/users/" + url.PathEscape(userID)
}

func ContactMethodsURL(userID string) string {
	return UserURL(userID) + "/contact-methods"
}

func NotificationRulesURL(userID string) string {
	return UserURL(userID) + "/notification-rules"
}

func NewContactMethodURL(userID string) string {
	return ContactMethodsURL(userID) + "/new"
}

func ContactMethodURL(userID, id string) string {
	return ContactMethodsURL(userID) + "/" + url.PathEscape(id)
}
