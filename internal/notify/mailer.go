package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the slice of the SES v2 client the mailer needs.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer sends the plaintext report email through SES v2.
type SESMailer struct {
	Client SESAPI
	Sender string
}

// NewSESMailer builds an SESMailer on the shared AWS config.
func NewSESMailer(ctx context.Context, region, sender string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESMailer{Client: sesv2.NewFromConfig(cfg), Sender: sender}, nil
}

// Send delivers one plaintext email to the recipient list.
func (m *SESMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if m == nil || m.Client == nil || m.Sender == "" {
		return fmt.Errorf("mailer is not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	_, err := m.Client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.Sender),
		Destination:      &sestypes.Destination{ToAddresses: to},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
