package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPNotifier delivers mail through a single relay host.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (n *SMTPNotifier) Send(_ context.Context, m Message) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, joinRecipients(m.To), m.Subject, m.Body)
	if err := smtp.SendMail(n.addr, n.auth, n.from, m.To, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
