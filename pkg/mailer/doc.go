// Package mailer renders markdown email templates and delivers them through
// a pluggable [Sender].
//
// Templates are markdown files with YAML frontmatter; the body is executed as
// a text/template, converted to HTML with goldmark, and wrapped in an HTML
// layout. The resend subpackage provides the production Sender; [LogSender]
// is used when no provider is configured.
package mailer
