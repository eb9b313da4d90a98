// Package repository stores contact methods, notification rules and
// verification codes in Postgres.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oncallkit/notifydesk/pkg/contactmethod"
	"github.com/oncallkit/notifydesk/pkg/db"
)

// Unique constraints of the schema, see migrations.
const (
	uniqueName  = "user_contact_methods_user_name_key"
	uniqueValue = "user_contact_methods_user_type_value_key"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	db.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AfterCreateFunc runs inside the insert transaction of a contact method.
// Returning an error rolls the insert back.
type AfterCreateFunc func(ctx context.Context, tx pgx.Tx, cm contactmethod.ContactMethod) error

type Option func(*Postgres)

// WithAfterCreate registers a hook run after every contact method insert.
func WithAfterCreate(fn AfterCreateFunc) Option {
	return func(p *Postgres) { p.afterCreate = fn }
}

// Postgres implements contactmethod.Repository.
type Postgres struct {
	db          DB
	afterCreate AfterCreateFunc
}

var _ contactmethod.Repository = (*Postgres)(nil)

func New(db DB, opts ...Option) *Postgres {
	p := &Postgres{db: db}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*contactmethod.User, error) {
	var u contactmethod.User
	err := p.db.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email)
	if db.IsNotFound(err) {
		return nil, contactmethod.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) CreateContactMethod(ctx context.Context, cm contactmethod.ContactMethod, rule *contactmethod.NotificationRule) error {
	err := db.WithTx(ctx, p.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_contact_methods (id, user_id, name, type, value, disabled, pending, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			cm.ID, cm.UserID, cm.Name, string(cm.Type), cm.Value, cm.Disabled, cm.Pending, cm.CreatedAt,
		); err != nil {
			return err
		}

		if rule != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_notification_rules (id, user_id, contact_method_id, delay_minutes, created_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				rule.ID, rule.UserID, rule.ContactMethodID, rule.DelayMinutes, rule.CreatedAt,
			); err != nil {
				return err
			}
		}

		if p.afterCreate != nil {
			return p.afterCreate(ctx, tx, cm)
		}
		return nil
	})
	if err != nil {
		return mapCreateError(err)
	}
	return nil
}

func mapCreateError(err error) error {
	constraint, ok := db.UniqueViolation(err)
	switch {
	case ok && constraint == uniqueName:
		return contactmethod.ErrDuplicateName
	case ok && constraint == uniqueValue:
		return contactmethod.ErrDuplicateValue
	}
	return fmt.Errorf("insert contact method: %w", err)
}

const selectContactMethod = `SELECT id, user_id, name, type, value, disabled, pending, created_at
	FROM user_contact_methods`

func scanContactMethod(row pgx.Row) (contactmethod.ContactMethod, error) {
	var cm contactmethod.ContactMethod
	var typ string
	err := row.Scan(&cm.ID, &cm.UserID, &cm.Name, &typ, &cm.Value, &cm.Disabled, &cm.Pending, &cm.CreatedAt)
	cm.Type = contactmethod.Type(typ)
	return cm, err
}

func (p *Postgres) GetContactMethod(ctx context.Context, id string) (*contactmethod.ContactMethod, error) {
	cm, err := scanContactMethod(p.db.QueryRow(ctx, selectContactMethod+` WHERE id = $1`, id))
	if db.IsNotFound(err) {
		return nil, contactmethod.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact method: %w", err)
	}
	return &cm, nil
}

func (p *Postgres) ListContactMethods(ctx context.Context, userID string) ([]contactmethod.ContactMethod, error) {
	rows, err := p.db.Query(ctx, selectContactMethod+` WHERE user_id = $1 ORDER BY lower(name), id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list contact methods: %w", err)
	}
	defer rows.Close()

	var out []contactmethod.ContactMethod
	for rows.Next() {
		cm, err := scanContactMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact method: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

func (p *Postgres) ListNotificationRules(ctx context.Context, userID string) ([]contactmethod.NotificationRule, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, user_id, contact_method_id, delay_minutes, created_at
		 FROM user_notification_rules
		 WHERE user_id = $1
		 ORDER BY delay_minutes, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notification rules: %w", err)
	}
	defer rows.Close()

	var out []contactmethod.NotificationRule
	for rows.Next() {
		var r contactmethod.NotificationRule
		if err := rows.Scan(&r.ID, &r.UserID, &r.ContactMethodID, &r.DelayMinutes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveVerificationCode(ctx context.Context, code contactmethod.VerificationCode) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO user_verification_codes (contact_method_id, code, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (contact_method_id) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at`,
		code.ContactMethodID, code.Code, code.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save verification code: %w", err)
	}
	return nil
}

func (p *Postgres) ConsumeVerificationCode(ctx context.Context, id, code string, now time.Time) (bool, error) {
	var consumed bool
	err := db.WithTx(ctx, p.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM user_verification_codes
			 WHERE contact_method_id = $1 AND code = $2 AND expires_at > $3`,
			id, code, now,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE user_contact_methods SET pending = false WHERE id = $1`, id); err != nil {
			return err
		}
		consumed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("consume verification code: %w", err)
	}
	return consumed, nil
}

func (p *Postgres) DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM user_verification_codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired verification codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
