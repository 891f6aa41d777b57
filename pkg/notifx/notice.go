package notifx

import "context"

// TemplatePasswordReset is the notice sent after a password reset completes.
const TemplatePasswordReset = "password-reset"

const (
	passwordResetSubject = `Your {{.AppName}} password was reset`
	passwordResetHTML    = `<p>Hello,</p>
<p>The password for your {{.AppName}} account ({{.Email}}) was just reset.</p>
<p>If you did not request this change, reset your password again and contact support.</p>`
	passwordResetText = `The password for your {{.AppName}} account ({{.Email}}) was just reset.`
)

// Notices sends the account notices the password handlers trigger.
type Notices struct {
	client  *Client
	from    string
	appName string
}

// NewNotices registers the notice templates on client.
func NewNotices(client *Client, from, appName string) (*Notices, error) {
	if err := client.RegisterTemplate(TemplatePasswordReset, passwordResetSubject, passwordResetHTML, passwordResetText); err != nil {
		return nil, err
	}
	return &Notices{client: client, from: from, appName: appName}, nil
}

type noticeData struct {
	AppName string
	Email   string
}

// PasswordReset tells address that its password was reset.
func (n *Notices) PasswordReset(ctx context.Context, address string) error {
	return n.client.SendTemplatedEmail(ctx, TemplatePasswordReset,
		noticeData{AppName: n.appName, Email: address},
		EmailMessage{From: n.from, To: []string{address}},
		WithTag("notice", TemplatePasswordReset))
}
