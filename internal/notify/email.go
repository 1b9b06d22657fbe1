// Package notify delivers the welcome and purchase-summary emails.
// Delivery is best-effort everywhere, callers log and continue on failure.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/sirupsen/logrus"
)

type logNotifier struct {
	log logrus.FieldLogger
}

// NewLog returns a notifier that only logs, used when no SMTP relay is
// configured.
func NewLog(log logrus.FieldLogger) port.Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) SendWelcome(_ context.Context, email, username string) error {
	n.log.WithFields(logrus.Fields{"email": email, "username": username}).Info("welcome email")
	return nil
}

func (n *logNotifier) SendPurchase(_ context.Context, email, username string, summary domain.PurchaseSummary) error {
	n.log.WithFields(logrus.Fields{
		"email":    email,
		"username": username,
		"items":    len(summary.Items),
		"total":    summary.Total.Amount.String(),
	}).Info("purchase email")
	return nil
}

type smtpNotifier struct {
	addr string
	from string
}

func NewSMTP(addr, from string) port.Notifier {
	return &smtpNotifier{addr: addr, from: from}
}

func (n *smtpNotifier) SendWelcome(_ context.Context, email, username string) error {
	body := fmt.Sprintf("Welcome %s, your account is ready.\r\n", username)
	return n.send(email, "Welcome", body)
}

func (n *smtpNotifier) SendPurchase(_ context.Context, email, username string, summary domain.PurchaseSummary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s, thanks for your purchase!\r\n\r\n", username)
	for _, item := range summary.Items {
		fmt.Fprintf(&b, "%s x%d @ %s %s = %s\r\n",
			item.ProductName, item.Quantity,
			item.UnitPrice.Amount.String(), item.UnitPrice.Currency.String(),
			item.Subtotal.Amount.String())
	}
	fmt.Fprintf(&b, "\r\nTotal: %s %s\r\n", summary.Total.Amount.String(), summary.Total.Currency.String())

	return n.send(email, "Your purchase", b.String())
}

func (n *smtpNotifier) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", n.from, to, subject, body)

	if err := smtp.SendMail(n.addr, nil, n.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp.SendMail: %w", err)
	}

	return nil
}
