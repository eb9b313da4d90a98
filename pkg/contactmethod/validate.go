package contactmethod

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/oncallkit/notifydesk/pkg/sanitizer"
	"github.com/oncallkit/notifydesk/pkg/validator"
)

const (
	MaxNameLength   = 255
	MaxDelayMinutes = 9000
)

var slackMemberID = regexp.MustCompile(`^[UW][A-Z0-9]{8,}$`)

// Normalize validates in and returns it with the name stripped of markup
// and the value in canonical form: E.164 for phone numbers, the bare
// address for email.
func Normalize(in CreateInput) (CreateInput, error) {
	in.Name = sanitizer.CollapseSpaces(sanitizer.StripHTML(strings.TrimSpace(in.Name)))
	in.Value = strings.TrimSpace(in.Value)

	rules := []validator.Rule{
		validator.RequiredString("userID", in.UserID),
		validator.RequiredString("name", in.Name),
		validator.MaxLenString("name", in.Name, MaxNameLength),
		validator.Custom("type", in.Type.Valid(), "must be one of SMS, VOICE, EMAIL, WEBHOOK, SLACK_DM", "validation.one_of"),
		validator.RequiredString("value", in.Value),
	}
	if rule := in.NewUserNotificationRule; rule != nil {
		rules = append(rules,
			validator.MinNum("newUserNotificationRule.delayMinutes", rule.DelayMinutes, 0),
			validator.MaxNum("newUserNotificationRule.delayMinutes", rule.DelayMinutes, MaxDelayMinutes),
		)
	}
	if err := validator.Apply(rules...); err != nil {
		return in, err
	}

	value, err := normalizeValue(in.Type, in.Value)
	if err != nil {
		return in, err
	}
	in.Value = value
	return in, nil
}

// Validate reports the validation errors of in, if any.
func Validate(in CreateInput) error {
	_, err := Normalize(in)
	return err
}

func normalizeValue(t Type, v string) (string, error) {
	switch t {
	case TypeSMS, TypeVoice:
		num, err := phonenumbers.Parse(v, "")
		if err != nil || !strings.HasPrefix(v, "+") || !phonenumbers.IsValidNumber(num) {
			return "", valueError("must be a valid phone number in international format, e.g. +16502530000")
		}
		return phonenumbers.Format(num, phonenumbers.E164), nil

	case TypeEmail:
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Name != "" {
			return "", valueError("must be a valid email address")
		}
		return strings.ToLower(addr.Address), nil

	case TypeWebhook:
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", valueError("must be an absolute http or https URL")
		}
		return u.String(), nil

	case TypeSlackDM:
		id := strings.ToUpper(v)
		if !slackMemberID.MatchString(id) {
			return "", valueError("must be a Slack member ID, e.g. U01ABCDEF23")
		}
		return id, nil
	}
	return v, nil
}

func valueError(msg string) error {
	return validator.NewFieldError("value", msg)
}
