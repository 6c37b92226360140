package email

import (
	"context"
	"fmt"

	"github.com/flowbaker/agentflow/pkg/domain"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

const (
	// IntegrationID is the id nodes bind to reach this adapter.
	IntegrationID = "email"

	SourceLive      = "email"
	SourceSimulated = "email-simulated"
)

// Adapter is the built-in notification stub. With a Resend API key it sends
// real mail; without one it logs the structured message and reports a
// simulated delivery, so notification nodes work in every environment.
type Adapter struct {
	client *resend.Client
	from   string
}

type AdapterDeps struct {
	APIKey string
	From   string
}

func NewAdapter(deps AdapterDeps) *Adapter {
	adapter := &Adapter{
		from: deps.From,
	}

	if deps.APIKey != "" {
		adapter.client = resend.NewClient(deps.APIKey)
	}

	return adapter
}

func (a *Adapter) IsConnected() bool {
	return true
}

func (a *Adapter) Execute(ctx context.Context, input map[string]any) (domain.AdapterResult, error) {
	to := stringField(input, "to")
	subject := stringField(input, "subject")
	body := stringField(input, "body")

	if subject == "" {
		subject = "Workflow notification"
	}

	if a.client == nil || to == "" {
		log.Info().
			Str("to", to).
			Str("subject", subject).
			Str("body", body).
			Msg("Email delivery simulated (no API key or recipient configured)")

		return domain.AdapterResult{
			Data: map[string]any{
				"to":        to,
				"subject":   subject,
				"delivered": false,
				"simulated": true,
			},
			Source: SourceSimulated,
		}, nil
	}

	sendEmailRequest := &resend.SendEmailRequest{
		From:    a.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	response, err := a.client.Emails.SendWithContext(ctx, sendEmailRequest)
	if err != nil {
		return domain.AdapterResult{}, fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return domain.AdapterResult{
		Data: map[string]any{
			"id":        response.Id,
			"to":        to,
			"subject":   subject,
			"delivered": true,
		},
		Source: SourceLive,
	}, nil
}

func stringField(input map[string]any, key string) string {
	value, _ := input[key].(string)

	return value
}
