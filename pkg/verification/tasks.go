package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/job"
)

const (
	SendTaskName   = "contact_method.send_verification"
	ExpireTaskName = "contact_method.expire_codes"

	// CodeTTL is how long a delivered code stays valid.
	CodeTTL = 15 * time.Minute
)

var ErrGenerateCode = errors.New("verification: failed to generate code")

// Store is the part of contactmethod.Repository the tasks need.
type Store interface {
	GetContactMethod(ctx context.Context, id string) (*contactmethod.ContactMethod, error)
	SaveVerificationCode(ctx context.Context, code contactmethod.VerificationCode) error
	DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error)
}

// Payload is the job payload of SendTask.
type Payload struct {
	ContactMethodID string `json:"contactMethodID"`
}

// SendTask generates, stores and delivers a verification code.
type SendTask struct {
	store  Store
	sender Sender
	log    *slog.Logger
	now    func() time.Time
}

func NewSendTask(store Store, sender Sender, log *slog.Logger) *SendTask {
	return &SendTask{store: store, sender: sender, log: log, now: time.Now}
}

func (t *SendTask) Name() string { return SendTaskName }

// Handle is a no-op for methods that are no longer pending. Each run replaces
// the previous code.
func (t *SendTask) Handle(ctx context.Context, p Payload) error {
	cm, err := t.store.GetContactMethod(ctx, p.ContactMethodID)
	if err != nil {
		if errors.Is(err, contactmethod.ErrNotFound) {
			t.log.WarnContext(ctx, "verification skipped, contact method gone",
				slog.String("contact_method_id", p.ContactMethodID))
			return nil
		}
		return err
	}
	if !cm.Pending {
		return nil
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := t.store.SaveVerificationCode(ctx, contactmethod.VerificationCode{
		ContactMethodID: cm.ID,
		Code:            code,
		ExpiresAt:       t.now().UTC().Add(CodeTTL),
	}); err != nil {
		return fmt.Errorf("save verification code: %w", err)
	}

	if err := t.sender.SendCode(ctx, *cm, code); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	t.log.InfoContext(ctx, "verification code sent", slog.String("contact_method_id", cm.ID))
	return nil
}

// ExpireTask deletes expired verification codes every 15 minutes.
type ExpireTask struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewExpireTask(store Store, log *slog.Logger) *ExpireTask {
	return &ExpireTask{store: store, log: log, now: time.Now}
}

func (t *ExpireTask) Name() string     { return ExpireTaskName }
func (t *ExpireTask) Schedule() string { return "*/15 * * * *" }

func (t *ExpireTask) Handle(ctx context.Context) error {
	n, err := t.store.DeleteExpiredVerificationCodes(ctx, t.now().UTC())
	if err != nil {
		return fmt.Errorf("delete expired verification codes: %w", err)
	}
	if n > 0 {
		t.log.InfoContext(ctx, "expired verification codes removed", slog.Int64("count", n))
	}
	return nil
}

// GenerateCode returns a uniformly random 6 digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", errors.Join(ErrGenerateCode, err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Inline runs SendTask in process. It implements contactmethod.Verifier.
type Inline struct {
	Task *SendTask
}

func (v Inline) RequestVerification(ctx context.Context, cm contactmethod.ContactMethod) error {
	return v.Task.Handle(ctx, Payload{ContactMethodID: cm.ID})
}

// Queue enqueues SendTask. It implements contactmethod.Verifier for resends
// outside of the create transaction.
type Queue struct {
	Enqueuer job.Enqueuer
}

func (v Queue) RequestVerification(ctx context.Context, cm contactmethod.ContactMethod) error {
	return v.Enqueuer.Enqueue(ctx, SendTaskName, Payload{ContactMethodID: cm.ID},
		job.Unique(cm.ID, time.Minute),
		job.MaxAttempts(5),
	)
}

// AfterCreate returns a repository hook that enqueues SendTask in the same
// transaction that inserts a pending contact method, so the job exists iff
// the row does.
func AfterCreate(enq job.Enqueuer) func(ctx context.Context, tx pgx.Tx, cm contactmethod.ContactMethod) error {
	return func(ctx context.Context, tx pgx.Tx, cm contactmethod.ContactMethod) error {
		if !cm.Pending {
			return nil
		}
		return enq.EnqueueTx(ctx, tx, SendTaskName, Payload{ContactMethodID: cm.ID},
			job.Unique(cm.ID, CodeTTL),
			job.MaxAttempts(5),
		)
	}
}

var (
	_ job.Task[Payload]      = (*SendTask)(nil)
	_ job.ScheduledTask      = (*ExpireTask)(nil)
	_ contactmethod.Verifier = Inline{}
	_ contactmethod.Verifier = Queue{}
)
