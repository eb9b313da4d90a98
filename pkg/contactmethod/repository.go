package contactmethod

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound            = errors.New("contactmethod: user not found")
	ErrNotFound                = errors.New("contactmethod: contact method not found")
	ErrDuplicateName           = errors.New("contactmethod: name already in use")
	ErrDuplicateValue          = errors.New("contactmethod: destination already registered")
	ErrVerificationUnavailable = errors.New("contactmethod: verification is not configured")
)

// Repository persists users' contact methods, notification rules and
// verification codes.
//
// CreateContactMethod stores the method and the optional rule atomically and
// reports unique conflicts as ErrDuplicateName or ErrDuplicateValue.
type Repository interface {
	GetUser(ctx context.Context, id string) (*User, error)
	CreateContactMethod(ctx context.Context, cm ContactMethod, rule *NotificationRule) error
	GetContactMethod(ctx context.Context, id string) (*ContactMethod, error)
	ListContactMethods(ctx context.Context, userID string) ([]ContactMethod, error)
	ListNotificationRules(ctx context.Context, userID string) ([]NotificationRule, error)

	SaveVerificationCode(ctx context.Context, code VerificationCode) error
	// ConsumeVerificationCode deletes a matching unexpired code and clears
	// the pending flag of its contact method. It reports false when no such
	// code exists.
	ConsumeVerificationCode(ctx context.Context, contactMethodID, code string, now time.Time) (bool, error)
	DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error)
}
