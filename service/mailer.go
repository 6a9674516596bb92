package service

import (
	"context"
	"fmt"

	mail "github.com/go-mail/mail/v2"
	"github.com/kevinaaaquil/novels/models"
)

// Mailer forwards contact messages to the site inbox over SMTP.
type Mailer struct {
	dialer *mail.Dialer
	from   string
	to     string
}

func NewMailer(host string, port int, username, password, from, to string) *Mailer {
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return &Mailer{dialer: d, from: from, to: to}
}

func (m *Mailer) SendContact(ctx context.Context, msg *models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	em := contactEmail(m.from, m.to, msg)
	if err := m.dialer.DialAndSend(em); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}
	return nil
}

func contactEmail(from, to string, msg *models.ContactMessage) *mail.Message {
	em := mail.NewMessage()
	em.SetHeader("From", from)
	em.SetHeader("To", to)
	em.SetAddressHeader("Reply-To", msg.Email, msg.Name)
	em.SetHeader("Subject", "Contact form: "+msg.Name)
	em.SetBody("text/plain", fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message))
	return em
}
