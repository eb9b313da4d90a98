// Package dialog holds the server-side state of the contact method create
// dialog between HTMX requests.
//
// A CreateDialog owns the draft the user is editing and one mutation
// executor. Submitting runs the mutation, waits for the contact method and
// notification rule lists to be refetched and then closes the dialog
// through its OnClose callback:
//
//	d, err := dialog.New(userID, mutator, func(res *dialog.CloseResult) {
//	    if res != nil {
//	        log.Info("created", "id", res.ContactMethodID)
//	    }
//	}, dialog.WithRefetcher(queries))
//
//	d.Change(draft)
//	id, err := d.Submit(ctx)
package dialog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/errutil"
	"github.com/oncallkit/notifydesk/pkg/mutation"
	"github.com/oncallkit/notifydesk/pkg/validator"
	"github.com/oncallkit/notifydesk/views"
)

// Query groups refetched after a contact method is created.
const (
	ContactMethodList    = "cmList"
	NotificationRuleList = "nrList"
)

var (
	ErrUserIDRequired = errors.New("dialog: user id is required")
	ErrClosed         = errors.New("dialog: closed")
)

// formFields are the inputs ContactMethodForm renders errors for.
var formFields = []string{"name", "type", "value"}

// Mutator creates a contact method and returns its id.
type Mutator interface {
	CreateUserContactMethod(ctx context.Context, in contactmethod.CreateInput) (string, error)
}

// CloseResult is passed to OnClose after a successful submit. Cancel passes
// nil.
type CloseResult struct {
	ContactMethodID string
}

type Option func(*settings)

type settings struct {
	id        string
	refetcher mutation.Refetcher
	log       *slog.Logger
}

func WithID(id string) Option {
	return func(s *settings) { s.id = id }
}

// WithRefetcher sets where the cmList and nrList groups are refetched.
// Without it the dialog closes right after the mutation.
func WithRefetcher(r mutation.Refetcher) Option {
	return func(s *settings) { s.refetcher = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

type CreateDialog struct {
	id      string
	userID  string
	onClose func(*CloseResult)
	exec    *mutation.Executor[contactmethod.CreateInput, string]

	mu     sync.Mutex
	draft  contactmethod.Draft
	closed bool
}

// New opens a dialog for userID with the default draft. onClose may be nil.
func New(userID string, m Mutator, onClose func(*CloseResult), opts ...Option) (*CreateDialog, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	s := settings{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}

	d := &CreateDialog{
		id:      s.id,
		userID:  userID,
		onClose: onClose,
		draft:   contactmethod.DefaultDraft(),
	}

	mopts := []mutation.Option{
		mutation.WithLogger(s.log.With(slog.String("dialog_id", s.id))),
		mutation.WithOnCompleted(func(id string) {
			d.close(&CloseResult{ContactMethodID: id})
		}),
	}
	if s.refetcher != nil {
		mopts = append(mopts,
			mutation.WithRefetchQueries(s.refetcher, NotificationRuleList, ContactMethodList),
			mutation.WithAwaitRefetchQueries(true),
		)
	}
	d.exec = mutation.New(m.CreateUserContactMethod, mopts...)

	return d, nil
}

func (d *CreateDialog) ID() string     { return d.id }
func (d *CreateDialog) UserID() string { return d.userID }

// Draft returns the current field values.
func (d *CreateDialog) Draft() contactmethod.Draft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// Change replaces the draft wholesale.
func (d *CreateDialog) Change(draft contactmethod.Draft) {
	d.mu.Lock()
	d.draft = draft
	d.mu.Unlock()
}

// Submit creates a contact method from the current draft. It returns
// mutation.ErrInFlight without issuing a request while a previous submit
// is pending. Errors are also kept for rendering until the next submit.
func (d *CreateDialog) Submit(ctx context.Context) (string, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return "", ErrClosed
	}
	in := d.draft.Input(d.userID)
	d.mu.Unlock()

	return d.exec.Execute(ctx, in)
}

// Cancel closes the dialog without a result.
func (d *CreateDialog) Cancel() {
	d.close(nil)
}

func (d *CreateDialog) close(res *CloseResult) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	if d.onClose != nil {
		d.onClose(res)
	}
}

func (d *CreateDialog) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *CreateDialog) Status() mutation.Status[string] {
	return d.exec.Status()
}

func (d *CreateDialog) Loading() bool {
	return d.exec.Status().Loading()
}

// FieldErrors returns the last submit's errors for name, type and value.
func (d *CreateDialog) FieldErrors() validator.ValidationErrors {
	fe, _ := errutil.Split(d.exec.Status().Err, formFields...)
	return fe
}

// NonFieldErrors returns the last submit's errors shown in the banner,
// including field errors for inputs the form does not render.
func (d *CreateDialog) NonFieldErrors() []string {
	_, rest := errutil.Split(d.exec.Status().Err, formFields...)
	if len(rest) == 0 {
		return nil
	}
	return errutil.Messages(rest)
}

// Component renders the dialog in its current state.
func (d *CreateDialog) Component() templ.Component {
	st := d.exec.Status()
	fe, rest := errutil.Split(st.Err, formFields...)

	var banner []string
	if len(rest) > 0 {
		banner = errutil.Messages(rest)
	}

	return views.ContactMethodCreateDialog(views.CreateDialogProps{
		DialogID:       d.id,
		UserID:         d.userID,
		Draft:          d.Draft(),
		FieldErrors:    fe,
		NonFieldErrors: banner,
		Loading:        st.Loading(),
	})
}
