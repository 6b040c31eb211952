package reminders

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier delivers email reminders over plain SMTP (Mailpit or a real
// relay).
type SMTPNotifier struct {
	addr string
	from string
}

func NewSMTPNotifier(host, port, from string) *SMTPNotifier {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@appointly.local"
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from,
	}
}

func (s *SMTPNotifier) Send(recipient, subject, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from,
		recipient,
		subject,
		body,
	)
	return smtp.SendMail(s.addr, nil, s.from, []string{recipient}, []byte(msg))
}
