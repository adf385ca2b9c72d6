// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

// SESClient delivers presentation emails. The engine only records delivery
// state; composition, tracking pixels and bounce handling stay on the SES
// side of the boundary.
type SESClient struct {
	client *ses.Client
	sender string
}

func NewSESClient(ctx context.Context, region, sender string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg), sender: sender}, nil
}

// SendPresentation delivers one candidate presentation and returns the SES
// message id.
func (s *SESClient) SendPresentation(ctx context.Context, p *models.EmailPresentation) (string, error) {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{p.Recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(p.Subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(p.Content)},
			},
		},
		Tags: []types.MessageTag{
			{Name: aws.String("trackingId"), Value: aws.String(p.TrackingID)},
		},
	})
	if err != nil {
		return "", engineerrors.NewNotificationSendFailedError("ses", err)
	}
	return aws.ToString(out.MessageId), nil
}
