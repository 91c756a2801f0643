package jobs

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends plain-text mail. The worker talks to a local relay (Mailpit in
// development), so bare SMTP without auth is enough.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail through a single SMTP relay.
type SMTPMailer struct {
	addr string
	from string
}

// NewSMTPMailer constructs an SMTPMailer for the given relay address.
func NewSMTPMailer(addr, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from}
}

// Send delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("jobs: send mail to %s: %w", to, err)
	}
	return nil
}
