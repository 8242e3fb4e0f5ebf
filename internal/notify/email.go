// Package notify emails the support desk when a customer writes into a
// support room with no agent connected.
package notify

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Mailer struct {
	client *sendgrid.Client
	from   string
	to     string
}

// New returns nil when the API key or addresses are missing; callers treat
// a nil Mailer as notifications disabled.
func New(apiKey, from, to string) *Mailer {
	if apiKey == "" || from == "" || to == "" {
		return nil
	}
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (m *Mailer) SupportOffline(orderID, preview string) error {
	if len(preview) > 200 {
		preview = preview[:200] + "…"
	}
	subject := fmt.Sprintf("Support message waiting on order %s", orderID)
	body := fmt.Sprintf("A customer wrote in support room %s while no agent was online:\n\n%s", orderID, preview)

	from := mail.NewEmail("Vendora Relay", m.from)
	to := mail.NewEmail("Support Desk", m.to)
	msg := mail.NewSingleEmail(from, subject, to, body, body)

	resp, err := m.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d", resp.StatusCode)
	}
	return nil
}
