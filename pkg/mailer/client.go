package mailer

import (
	gomail "gopkg.in/gomail.v2"
)

// Mailer defines the interface for an outbound mail transport.
type Mailer interface {
	Send(to, subject, body string) error
}

// client is an SMTP implementation of Mailer.
type client struct {
	dialer *gomail.Dialer
	from   string
}

// NewClient creates a new SMTP mailer client.
func NewClient(host string, port int, username, password, from string) Mailer {
	return &client{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers a single plain-text message to one recipient.
func (c *client) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return c.dialer.DialAndSend(m)
}
