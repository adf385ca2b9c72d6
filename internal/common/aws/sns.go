// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

// SNSAuditPublisher fans workflow audit events out to the external audit
// collaborator.
type SNSAuditPublisher struct {
	client   *sns.Client
	topicARN string
}

func NewSNSAuditPublisher(ctx context.Context, region, topicARN string) (*SNSAuditPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSAuditPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

// Publish sends one audit event as a JSON message.
func (p *SNSAuditPublisher) Publish(ctx context.Context, event models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return engineerrors.NewNotificationSendFailedError("sns", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return engineerrors.NewNotificationSendFailedError("sns", err)
	}
	return nil
}
