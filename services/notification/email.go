package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"gopkg.in/gomail.v2"
)

// EmailChannel delivers events to the configured staff recipients over SMTP.
// Each recipient is attempted independently; one bounce must not stop the
// rest.
type EmailChannel struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

func NewEmailChannel(host string, port int, username, password, from string, to []string) *EmailChannel {
	return &EmailChannel{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) SendNewBooking(ctx context.Context, booking models.BookingRecord) error {
	title, body := newBookingMessage(booking)
	return c.sendToAll(title, body)
}

func (c *EmailChannel) SendStatusChange(ctx context.Context, change models.StatusChange) error {
	title, body := statusChangeMessage(change)
	return c.sendToAll(title, body)
}

func (c *EmailChannel) sendToAll(subject, body string) error {
	var failures []error
	for _, recipient := range c.to {
		m := gomail.NewMessage()
		m.SetHeader("From", c.from)
		m.SetHeader("To", recipient)
		m.SetHeader("Subject", "[STO] "+subject)
		m.SetBody("text/plain", body)

		if err := c.dialer.DialAndSend(m); err != nil {
			failures = append(failures, fmt.Errorf("recipient %s: %w", recipient, err))
		}
	}
	return errors.Join(failures...)
}
