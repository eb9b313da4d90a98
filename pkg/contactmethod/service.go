package contactmethod

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/oncallkit/notifydesk/pkg/validator"
)

// Verifier starts ownership verification of a newly created method.
type Verifier interface {
	RequestVerification(ctx context.Context, cm ContactMethod) error
}

// Service implements the contact method operations.
type Service struct {
	repo     Repository
	verifier Verifier
	resender Verifier
	log      *slog.Logger
	now      func() time.Time
	newID    func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithVerifier requests verification for every method created pending.
// Storage that enqueues verification itself, inside its own transaction,
// does not need one.
func WithVerifier(v Verifier) ServiceOption {
	return func(s *Service) { s.verifier = v }
}

// WithResender handles SendVerificationCode. It defaults to the verifier.
func WithResender(v Verifier) ServiceOption {
	return func(s *Service) { s.resender = v }
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides uuid.NewString.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) { s.newID = fn }
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:  repo,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUserContactMethod validates in and stores the contact method together
// with its initial notification rule. Unique conflicts are reported as field
// errors on name or value.
func (s *Service) CreateUserContactMethod(ctx context.Context, in CreateInput) (*ContactMethod, error) {
	in, err := Normalize(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	cm := ContactMethod{
		ID:        s.newID(),
		UserID:    in.UserID,
		Name:      in.Name,
		Type:      in.Type,
		Value:     in.Value,
		Pending:   in.Type.NeedsVerification(),
		CreatedAt: now,
	}

	var rule *NotificationRule
	if in.NewUserNotificationRule != nil {
		rule = &NotificationRule{
			ID:              s.newID(),
			UserID:          in.UserID,
			ContactMethodID: cm.ID,
			DelayMinutes:    in.NewUserNotificationRule.DelayMinutes,
			CreatedAt:       now,
		}
	}

	if err := s.repo.CreateContactMethod(ctx, cm, rule); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateName):
			return nil, validator.NewFieldError("name", "is already used by another contact method")
		case errors.Is(err, ErrDuplicateValue):
			return nil, validator.NewFieldError("value", "is already registered for this user")
		}
		return nil, fmt.Errorf("create contact method: %w", err)
	}

	s.log.InfoContext(ctx, "contact method created",
		slog.String("contact_method_id", cm.ID),
		slog.String("user_id", cm.UserID),
		slog.String("type", string(cm.Type)),
	)

	if cm.Pending && s.verifier != nil {
		if err := s.verifier.RequestVerification(ctx, cm); err != nil {
			s.log.ErrorContext(ctx, "failed to request verification",
				slog.String("contact_method_id", cm.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return &cm, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) ListContactMethods(ctx context.Context, userID string) ([]ContactMethod, error) {
	return s.repo.ListContactMethods(ctx, userID)
}

func (s *Service) ListNotificationRules(ctx context.Context, userID string) ([]NotificationRule, error) {
	return s.repo.ListNotificationRules(ctx, userID)
}

// GetUserContactMethod returns the contact method id if userID owns it.
func (s *Service) GetUserContactMethod(ctx context.Context, userID, id string) (*ContactMethod, error) {
	cm, err := s.repo.GetContactMethod(ctx, id)
	if err != nil {
		return nil, err
	}
	if cm.UserID != userID {
		return nil, ErrNotFound
	}
	return cm, nil
}

// SendVerificationCode issues a fresh code for a pending contact method.
// Active methods are returned unchanged.
func (s *Service) SendVerificationCode(ctx context.Context, userID, id string) (*ContactMethod, error) {
	cm, err := s.GetUserContactMethod(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !cm.Pending {
		return cm, nil
	}

	v := s.resender
	if v == nil {
		v = s.verifier
	}
	if v == nil {
		return nil, ErrVerificationUnavailable
	}
	if err := v.RequestVerification(ctx, *cm); err != nil {
		return nil, fmt.Errorf("send verification code: %w", err)
	}
	return cm, nil
}

var codeFormat = regexp.MustCompile(`^\d{6}$`)

// Verify confirms a pending contact method owned by userID. Verifying an
// already active method succeeds without checking the code.
func (s *Service) Verify(ctx context.Context, userID, id, code string) error {
	cm, err := s.GetUserContactMethod(ctx, userID, id)
	if err != nil {
		return err
	}
	if !cm.Pending {
		return nil
	}

	if !codeFormat.MatchString(code) {
		return validator.NewFieldError("code", "must be 6 digits")
	}

	ok, err := s.repo.ConsumeVerificationCode(ctx, id, code, s.now().UTC())
	if err != nil {
		return fmt.Errorf("verify contact method: %w", err)
	}
	if !ok {
		return validator.NewFieldError("code", "is invalid or expired")
	}

	s.log.InfoContext(ctx, "contact method verified", slog.String("contact_method_id", id))
	return nil
}
