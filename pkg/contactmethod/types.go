package contactmethod

import (
	"fmt"
	"strings"
	"time"
)

// Type is the delivery channel of a contact method.
type Type string

const (
	TypeSMS     Type = "SMS"
	TypeVoice   Type = "VOICE"
	TypeEmail   Type = "EMAIL"
	TypeWebhook Type = "WEBHOOK"
	TypeSlackDM Type = "SLACK_DM"
)

// Types returns all types in display order.
func Types() []Type {
	return []Type{TypeSMS, TypeVoice, TypeEmail, TypeWebhook, TypeSlackDM}
}

// ParseType accepts any letter case.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown contact method type %q", s)
	}
	return t, nil
}

func (t Type) Valid() bool {
	switch t {
	case TypeSMS, TypeVoice, TypeEmail, TypeWebhook, TypeSlackDM:
		return true
	}
	return false
}

// Label is the human readable name of the type.
func (t Type) Label() string {
	switch t {
	case TypeSMS:
		return "SMS"
	case TypeVoice:
		return "Voice"
	case TypeEmail:
		return "Email"
	case TypeWebhook:
		return "Webhook"
	case TypeSlackDM:
		return "Slack Message"
	}
	return string(t)
}

// ValueLabel names the destination field for the type.
func (t Type) ValueLabel() string {
	switch t {
	case TypeSMS, TypeVoice:
		return "Phone Number"
	case TypeEmail:
		return "Email Address"
	case TypeWebhook:
		return "Webhook URL"
	case TypeSlackDM:
		return "Slack Member ID"
	}
	return "Value"
}

// ValueHint is an example destination.
func (t Type) ValueHint() string {
	switch t {
	case TypeSMS, TypeVoice:
		return "+16502530000"
	case TypeEmail:
		return "name@example.com"
	case TypeWebhook:
		return "https://example.com/hooks/alerts"
	case TypeSlackDM:
		return "U01ABCDEF23"
	}
	return ""
}

// NeedsVerification reports whether new methods of this type start pending.
func (t Type) NeedsVerification() bool {
	return t == TypeSMS || t == TypeVoice || t == TypeEmail
}

// Draft is the editable state of the create form.
type Draft struct {
	Name  string `form:"name" json:"name" sanitize:"trim,strip,spaces"`
	Type  Type   `form:"type" json:"type" sanitize:"trim,upper"`
	Value string `form:"value" json:"value" sanitize:"trim"`
}

// DefaultDraft is the draft a freshly opened dialog starts with.
func DefaultDraft() Draft {
	return Draft{Type: TypeSMS}
}

// NotificationRuleInput describes the rule created with a contact method.
type NotificationRuleInput struct {
	DelayMinutes int `json:"delayMinutes"`
}

// CreateInput is the input of CreateUserContactMethod.
type CreateInput struct {
	NewUserNotificationRule *NotificationRuleInput `json:"newUserNotificationRule,omitempty"`
	Name                    string                 `json:"name"`
	Type                    Type                   `json:"type"`
	Value                   string                 `json:"value"`
	UserID                  string                 `json:"userID"`
}

// Input merges the draft with the fields the dialog fixes: the owning user
// and an immediate notification rule.
func (d Draft) Input(userID string) CreateInput {
	return CreateInput{
		Name:                    d.Name,
		Type:                    d.Type,
		Value:                   d.Value,
		UserID:                  userID,
		NewUserNotificationRule: &NotificationRuleInput{DelayMinutes: 0},
	}
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ContactMethod struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userID"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Value     string    `json:"value"`
	Disabled  bool      `json:"disabled"`
	Pending   bool      `json:"pending"`
}

type NotificationRule struct {
	CreatedAt       time.Time `json:"createdAt"`
	ID              string    `json:"id"`
	UserID          string    `json:"userID"`
	ContactMethodID string    `json:"contactMethodID"`
	DelayMinutes    int       `json:"delayMinutes"`
}

// VerificationCode is a one-time code proving ownership of a destination.
type VerificationCode struct {
	ExpiresAt       time.Time
	ContactMethodID string
	Code            string
}
