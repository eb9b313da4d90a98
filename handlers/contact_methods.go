package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oncallkit/notifydesk"
	"github.com/oncallkit/notifydesk/pkg/cache"
	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/dialog"
	"github.com/oncallkit/notifydesk/pkg/htmx"
	"github.com/oncallkit/notifydesk/pkg/logger"
	"github.com/oncallkit/notifydesk/pkg/mutation"
	"github.com/oncallkit/notifydesk/pkg/query"
	"github.com/oncallkit/notifydesk/pkg/validator"
	"github.com/oncallkit/notifydesk/views"
)

// Client-side events raised by the dialog routes.
const (
	EventContactMethodCreated  = "contactMethodCreated"
	EventDialogClosed          = "contactMethodDialogClosed"
	EventContactMethodVerified = "contactMethodVerified"
)

const defaultDialogTTL = 30 * time.Minute

// Config holds the dependencies of ContactMethods.
type Config struct {
	Service *contactmethod.Service
	// Mutator submits dialogs. It defaults to the in-process service.
	Mutator dialog.Mutator
	Queries *query.Registry
	// Dialogs keeps open dialogs between requests.
	Dialogs   cache.Cache[*dialog.CreateDialog]
	DialogTTL time.Duration
	Version   string
	Logger    *slog.Logger
}

// ContactMethods serves the profile page, the create dialog and the
// verification actions.
type ContactMethods struct {
	svc       *contactmethod.Service
	mutator   dialog.Mutator
	queries   *query.Registry
	dialogs   cache.Cache[*dialog.CreateDialog]
	dialogTTL time.Duration
	dialogID  notifydesk.Extractor
	submits   singleflight.Group
	version   string
	log       *slog.Logger
}

// NewContactMethods registers the cmList and nrList query groups on
// cfg.Queries and returns the handler.
func NewContactMethods(cfg Config) *ContactMethods {
	h := &ContactMethods{
		svc:       cfg.Service,
		mutator:   cfg.Mutator,
		queries:   cfg.Queries,
		dialogs:   cfg.Dialogs,
		dialogTTL: cfg.DialogTTL,
		dialogID: notifydesk.NewExtractor(
			notifydesk.FromHeader("X-Dialog-ID"),
			notifydesk.FromForm("dialog_id"),
		),
		version: cfg.Version,
		log:     cfg.Logger,
	}
	if h.mutator == nil {
		h.mutator = contactmethod.LocalMutator{Service: cfg.Service}
	}
	if h.dialogs == nil {
		h.dialogs = cache.NewMemory[*dialog.CreateDialog]()
	}
	if h.dialogTTL <= 0 {
		h.dialogTTL = defaultDialogTTL
	}
	if h.log == nil {
		h.log = logger.NewNope()
	}

	RegisterQueries(h.queries, h.svc)
	return h
}

// RegisterQueries adds the list query groups refetched after a create.
func RegisterQueries(r *query.Registry, svc *contactmethod.Service) {
	r.Register(dialog.ContactMethodList, func(ctx context.Context, userID string) (any, error) {
		return svc.ListContactMethods(ctx, userID)
	})
	r.Register(dialog.NotificationRuleList, func(ctx context.Context, userID string) (any, error) {
		return svc.ListNotificationRules(ctx, userID)
	})
}

func (h *ContactMethods) Routes(r notifydesk.Router) {
	r.Route("/users/{userID}", func(r notifydesk.Router) {
		r.Use(scopeUser)

		r.GET("/", h.profile)
		r.GET("/notification-rules", h.listRules)

		r.Route("/contact-methods", func(r notifydesk.Router) {
			r.GET("/", h.listContactMethods)
			r.POST("/", h.submit)

			r.GET("/new", h.open)
			r.POST("/new/change", h.change)
			r.POST("/new/cancel", h.cancel)

			r.POST("/{id}/verify", h.verify)
			r.POST("/{id}/send-code", h.sendCode)
		})
	})
}

type userIDKey struct{}

func scopeUser(next notifydesk.HandlerFunc) notifydesk.HandlerFunc {
	return func(c notifydesk.Context) error {
		c.Set(userIDKey{}, c.Param("userID"))
		return next(c)
	}
}

// UserIDExtractor adds user_id to records logged under /users/{userID}.
func UserIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, _ := ctx.Value(userIDKey{}).(string); v != "" {
			return slog.String("user_id", v), true
		}
		return slog.Attr{}, false
	}
}

func (h *ContactMethods) lists(c notifydesk.Context, userID string, oob bool) (views.ListProps, error) {
	methods, err := query.Get[[]contactmethod.ContactMethod](c, h.queries, dialog.ContactMethodList, userID)
	if err != nil {
		return views.ListProps{}, err
	}
	rules, err := query.Get[[]contactmethod.NotificationRule](c, h.queries, dialog.NotificationRuleList, userID)
	if err != nil {
		return views.ListProps{}, err
	}
	return views.ListProps{UserID: userID, Methods: methods, Rules: rules, OOB: oob}, nil
}

func (h *ContactMethods) user(c notifydesk.Context) (*contactmethod.User, error) {
	u, err := h.svc.GetUser(c, c.Param("userID"))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (h *ContactMethods) profile(c notifydesk.Context) error {
	u, err := h.user(c)
	if err != nil {
		return err
	}
	lists, err := h.lists(c, u.ID, false)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.UserPage(views.UserPageProps{
		User:    *u,
		Methods: lists.Methods,
		Rules:   lists.Rules,
		Version: h.version,
	}))
}

func (h *ContactMethods) listContactMethods(c notifydesk.Context) error {
	lists, err := h.lists(c, c.Param("userID"), false)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.ContactMethodList(lists))
}

func (h *ContactMethods) listRules(c notifydesk.Context) error {
	lists, err := h.lists(c, c.Param("userID"), false)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.NotificationRuleList(lists))
}

// open mounts a new dialog with the default draft.
func (h *ContactMethods) open(c notifydesk.Context) error {
	u, err := h.user(c)
	if err != nil {
		return err
	}

	log := c.Logger()
	d, err := dialog.New(u.ID, h.mutator, func(res *dialog.CloseResult) {
		if res == nil {
			log.Info("contact method dialog cancelled", slog.String("user_id", u.ID))
			return
		}
		log.Info("contact method created", slog.String("user_id", u.ID), slog.String("contact_method_id", res.ContactMethodID))
	},
		dialog.WithRefetcher(h.queries),
		dialog.WithLogger(log),
	)
	if err != nil {
		return err
	}

	if err := h.dialogs.Set(c, d.ID(), d, h.dialogTTL); err != nil {
		return err
	}

	return c.RenderPartial(http.StatusOK,
		views.Layout("Create New Contact Method", h.version, d.Component()),
		d.Component(),
	)
}

// loadDialog loads the dialog named by the request for the user in the path.
func (h *ContactMethods) loadDialog(c notifydesk.Context) (*dialog.CreateDialog, error) {
	id, ok := h.dialogID.Extract(c)
	if !ok {
		return nil, notifydesk.ErrBadRequest("missing dialog id")
	}

	d, err := h.dialogs.Get(c, id)
	if errors.Is(err, cache.ErrNotFound) || (err == nil && d.UserID() != c.Param("userID")) {
		return nil, errDialogExpired()
	}
	return d, err
}

func errDialogExpired() error {
	return notifydesk.ErrNotFound("This dialog has expired. Close it and try again.",
		notifydesk.WithTitle("Dialog expired"))
}

func (h *ContactMethods) bindDraft(c notifydesk.Context, d *dialog.CreateDialog) error {
	var draft contactmethod.Draft
	if _, err := c.Bind(&draft); err != nil {
		return notifydesk.ErrBadRequest("invalid form data", notifydesk.WithError(err))
	}
	d.Change(draft)
	return nil
}

func (h *ContactMethods) change(c notifydesk.Context) error {
	d, err := h.loadDialog(c)
	if err != nil {
		return err
	}
	if err := h.bindDraft(c, d); err != nil {
		return err
	}
	return c.Render(http.StatusOK, d.Component())
}

// cancel closes the dialog. A missing or expired dialog is already gone, so
// the container is emptied anyway; a dialog of another user is left alone.
func (h *ContactMethods) cancel(c notifydesk.Context) error {
	if id, ok := h.dialogID.Extract(c); ok {
		d, err := h.dialogs.Get(c, id)
		if err == nil && d.UserID() != c.Param("userID") {
			return errDialogExpired()
		}
		if err == nil {
			d.Cancel()
		}
		if err := h.dialogs.Delete(c, id); err != nil {
			c.LogWarn("drop dialog", slog.String("error", err.Error()))
		}
	}

	if !c.IsHTMX() {
		return c.Redirect(http.StatusSeeOther, views.UserURL(c.Param("userID")))
	}
	return c.Render(http.StatusOK, views.Empty(), htmx.WithTrigger(EventDialogClosed))
}

// submit creates the contact method. Concurrent submits of one dialog share
// a single mutation. On success the dialog container is emptied and both
// lists are swapped out of band.
func (h *ContactMethods) submit(c notifydesk.Context) error {
	d, err := h.loadDialog(c)
	if err != nil {
		return err
	}
	if err := h.bindDraft(c, d); err != nil {
		return err
	}

	v, err, _ := h.submits.Do(d.ID(), func() (any, error) {
		return d.Submit(c)
	})
	switch {
	case errors.Is(err, dialog.ErrClosed):
		return h.closed(c, d.UserID())
	case errors.Is(err, mutation.ErrInFlight):
		return c.Render(http.StatusAccepted, d.Component())
	case err != nil:
		c.LogInfo("create contact method rejected", slog.String("error", err.Error()))
		return c.Render(http.StatusUnprocessableEntity, d.Component())
	}

	if err := h.dialogs.Delete(c, d.ID()); err != nil {
		c.LogWarn("drop dialog", slog.String("error", err.Error()))
	}

	if !c.IsHTMX() {
		return c.Redirect(http.StatusSeeOther, views.UserURL(d.UserID()))
	}

	lists, err := h.lists(c, d.UserID(), true)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.Empty(),
		htmx.WithTriggerDetail(EventContactMethodCreated, map[string]string{"contactMethodID": v.(string)}),
		htmx.WithOOB(views.ContactMethodList(lists), views.NotificationRuleList(lists)),
	)
}

// closed answers a submit that arrived after the dialog already closed.
func (h *ContactMethods) closed(c notifydesk.Context, userID string) error {
	if !c.IsHTMX() {
		return c.Redirect(http.StatusSeeOther, views.UserURL(userID))
	}
	return c.Render(http.StatusOK, views.Empty())
}

func (h *ContactMethods) verify(c notifydesk.Context) error {
	userID := c.Param("userID")
	cm, err := h.svc.GetUserContactMethod(c, userID, c.Param("id"))
	if err != nil {
		return notFound(err)
	}

	err = h.svc.Verify(c, userID, cm.ID, c.Form("code"))
	if ves := validator.ExtractValidationErrors(err); ves != nil {
		return c.Render(http.StatusUnprocessableEntity, views.VerifyResult(userID, *cm, ves.First("code")))
	}
	if err != nil {
		return notFound(err)
	}

	if err := h.queries.Refetch(c, dialog.ContactMethodList); err != nil {
		c.LogWarn("refetch contact methods after verify", slog.String("error", err.Error()))
	}
	return c.Render(http.StatusOK, views.VerifyResult(userID, *cm, ""),
		htmx.WithTriggerAfterSettle(EventContactMethodVerified),
	)
}

func (h *ContactMethods) sendCode(c notifydesk.Context) error {
	userID := c.Param("userID")
	cm, err := h.svc.SendVerificationCode(c, userID, c.Param("id"))
	if errors.Is(err, contactmethod.ErrVerificationUnavailable) {
		return notifydesk.ErrServiceUnavailable("Verification codes cannot be sent right now.", notifydesk.WithError(err))
	}
	if err != nil {
		return notFound(err)
	}
	if !cm.Pending {
		return c.Render(http.StatusOK, views.VerifyResult(userID, *cm, ""))
	}
	return c.Render(http.StatusOK, views.CodeSent(userID, *cm))
}

// notFound maps missing users and contact methods to 404.
func notFound(err error) error {
	switch {
	case errors.Is(err, contactmethod.ErrUserNotFound):
		return notifydesk.ErrNotFound("User not found.", notifydesk.WithError(err))
	case errors.Is(err, contactmethod.ErrNotFound):
		return notifydesk.ErrNotFound("Contact method not found.", notifydesk.WithError(err))
	}
	return err
}
