// Package email renders embedded HTML templates and sends them through
// Resend.
package email

import (
	"bytes"
	"context"

	"github.com/deppfellow/pickboard/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ErrDisabled is returned by Send when no Resend API key is configured.
var ErrDisabled = errors.New("email sending is disabled")

// sender is the subset of resend.EmailsSvc the client uses.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	emails sender
	from   string
	logger *zerolog.Logger
}

// NewClient returns a client sending as cfg.Integration.EmailFrom. Without
// an API key every send fails with ErrDisabled.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	c := &Client{
		from:   cfg.Integration.EmailFrom,
		logger: logger,
	}
	if cfg.Integration.ResendAPIKey != "" {
		c.emails = resend.NewClient(cfg.Integration.ResendAPIKey).Emails
	}
	return c
}

// Render executes the named template with data.
func Render(name Template, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name.file(), data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}

// SendEmail renders a template and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, name Template, data any) error {
	if c.emails == nil {
		return ErrDisabled
	}

	html, err := Render(name, data)
	if err != nil {
		return err
	}

	resp, err := c.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Tags:    []resend.Tag{{Name: "template", Value: string(name)}},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to send %s email", name)
	}

	c.logger.Debug().
		Str("template", string(name)).
		Str("email_id", resp.Id).
		Msg("email sent")
	return nil
}
