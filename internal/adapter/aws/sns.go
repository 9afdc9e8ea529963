// Package aws implements order messaging on SNS, SQS and EventBridge.
package aws

import (
	"context"
	"fmt"
	"log/slog"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier publishes order payloads to an SNS topic.
type Notifier struct {
	client   snsPublisher
	topicARN string
	logger   *slog.Logger
}

// NewNotifier constructs Notifier for the given topic.
func NewNotifier(client snsPublisher, topicARN string, logger *slog.Logger) *Notifier {
	return &Notifier{client: client, topicARN: topicARN, logger: logger}
}

// Publish sends payload as the message body of a topic notification.
func (n *Notifier) Publish(ctx context.Context, payload string) error {
	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Message:  awssdk.String(payload),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	n.logger.Debug("published notification", slog.String("topic", n.topicARN), slog.String("message_id", awssdk.ToString(out.MessageId)))
	return nil
}
