package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// emailSender is the part of resend.EmailsSvc used here.
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier emails every message through Resend.
type ResendNotifier struct {
	emails emailSender
	from   string
	to     []string
	logger *zap.Logger
}

func NewResendNotifier(apiKey, from string, to []string, logger *zap.Logger) *ResendNotifier {
	client := resend.NewClient(apiKey)
	return newResendNotifier(client.Emails, from, to, logger)
}

func newResendNotifier(emails emailSender, from string, to []string, logger *zap.Logger) *ResendNotifier {
	return &ResendNotifier{
		emails: emails,
		from:   from,
		to:     to,
		logger: logger.With(zap.String("component", "notify")),
	}
}

func (n *ResendNotifier) Publish(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := message
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		subject = message[:i]
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: subject,
		Text:    message,
		Html:    "<pre style=\"font-family: sans-serif;\">" + html.EscapeString(message) + "</pre>",
	}

	sent, err := n.emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.logger.Info("notification email sent", zap.String("email_id", sent.Id))
	return nil
}
