package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// message is one rendered email ready for a transport.
type message struct {
	kind    string
	to      string
	subject string
	html    string
}

// transport delivers a message and returns the provider's id for it.
type transport interface {
	deliver(ctx context.Context, from string, m message) (string, error)
}

type resendTransport struct {
	client *resend.Client
}

func newResendTransport(apiKey string) *resendTransport {
	return &resendTransport{client: resend.NewClient(apiKey)}
}

// deliver maps provider throttling onto ErrRateLimited so River backs off
// instead of retrying straight away.
func (t *resendTransport) deliver(ctx context.Context, from string, m message) (string, error) {
	sent, err := t.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{m.to},
		Subject: m.subject,
		Html:    m.html,
		Tags:    []resend.Tag{{Name: "kind", Value: m.kind}},
	})
	if err == nil {
		return sent.Id, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	var throttled *resend.RateLimitError
	if errors.As(err, &throttled) {
		return "", fmt.Errorf("%w (limit %s, resets in %ss): %w", ErrRateLimited, throttled.Limit, throttled.Reset, err)
	}
	return "", fmt.Errorf("resend API error: %w", err)
}
