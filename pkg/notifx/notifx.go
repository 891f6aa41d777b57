// Package notifx sends account notices by email through a pluggable provider.
package notifx

import (
	"context"
	"strings"
)

// EmailSender delivers one message. Providers live in subpackages.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error
}

// Client checks messages and renders notice templates before handing them to a provider.
type Client struct {
	provider  EmailSender
	templates *Templates
}

func NewClient(provider EmailSender) *Client {
	return &Client{provider: provider, templates: NewTemplates()}
}

// SendEmail rejects messages without a recipient, subject or body.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage, opts ...Option) error {
	switch {
	case len(msg.To) == 0:
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	case strings.TrimSpace(msg.Subject) == "":
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	case msg.HTMLBody == "" && msg.TextBody == "":
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty body")
	}
	return c.provider.SendEmail(ctx, msg, opts...)
}

// RegisterTemplate stores a notice template. See Templates.Register.
func (c *Client) RegisterTemplate(name, subject, html, text string) error {
	return c.templates.Register(name, subject, html, text)
}

// SendTemplatedEmail renders name with data into msg's subject and bodies, then sends it.
func (c *Client) SendTemplatedEmail(ctx context.Context, name string, data any, msg EmailMessage, opts ...Option) error {
	r, err := c.templates.Render(name, data)
	if err != nil {
		return err
	}
	msg.Subject, msg.HTMLBody, msg.TextBody = r.Subject, r.HTMLBody, r.TextBody
	return c.SendEmail(ctx, msg, opts...)
}
