// Package notifxconsole logs notifx emails instead of sending them.
package notifxconsole

import (
	"context"
	"strings"

	"github.com/Abraxas-365/nimbus/pkg/logx"
	"github.com/Abraxas-365/nimbus/pkg/notifx"
)

// ConsoleProvider prints emails via logx. Intended for local runs.
type ConsoleProvider struct{}

// NewConsoleProvider creates a new console email provider.
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

// SendEmail logs the email details instead of sending it.
func (p *ConsoleProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage, opts ...notifx.Option) error {
	so := notifx.SendOptionsFrom(opts...)

	logx.WithContext(ctx).WithFields(logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
		"tags":    so.Tags,
	}).Info("notifx/console: email sent (dev mode)")

	if msg.TextBody != "" {
		logx.Debugf("notifx/console: text body:\n%s", msg.TextBody)
	}

	return nil
}
