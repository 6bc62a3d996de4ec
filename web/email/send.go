package email

import (
	"fmt"
	"net/smtp"
)

// Mailer sends plain-text mail over SMTP. All fields must be set for sends
// to be enabled.
type Mailer struct {
	Server   string
	Port     string
	User     string
	Pass     string
	FromAddr string
	FromName string
}

func (m Mailer) Enabled() bool {
	return m.Server != "" && m.Port != "" && m.User != "" && m.Pass != "" && m.FromAddr != "" && m.FromName != ""
}

func (m Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("smtp not configured")
	}

	msg := []byte(fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n"+
		"%s",
		m.FromName, m.FromAddr, to, subject, body))

	auth := smtp.PlainAuth("", m.User, m.Pass, m.Server)

	if err := smtp.SendMail(m.Server+":"+m.Port, auth, m.FromAddr, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendOrderConfirmed tells the customer their order went through.
func (m Mailer) SendOrderConfirmed(to, orderCode, planName, price string) error {
	subject := fmt.Sprintf("Order %s confirmed", orderCode)
	body := fmt.Sprintf("Hi,\n\nYour order %s (%s, %s) has been confirmed.\n\nKeep this order ID for any support request.\n", orderCode, planName, price)
	return m.Send(to, subject, body)
}
