package mailer

import "errors"

var (
	ErrNoRecipient        = errors.New("mailer: email must have at least one recipient")
	ErrNoSubject          = errors.New("mailer: email must have a subject")
	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrLayoutNotFound     = errors.New("mailer: layout not found")
	ErrRenderFailed       = errors.New("mailer: failed to render template")
	ErrSendFailed         = errors.New("mailer: failed to send email")
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")
)
