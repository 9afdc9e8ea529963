package aws

import (
	"context"
	"fmt"
	"log/slog"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/polkiloo/orderservice/internal/config"
)

// Adapters bundles the AWS implementations of the messaging ports.
type Adapters struct {
	Notifier *Notifier
	Events   *EventSink
	Queue    *Queue
}

// New loads shared AWS configuration and builds the SNS, EventBridge and SQS adapters.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Adapters, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := cfg.AWSEndpoint
	snsClient := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = awssdk.String(endpoint)
		}
	})
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = awssdk.String(endpoint)
		}
	})
	ebClient := eventbridge.NewFromConfig(awsCfg, func(o *eventbridge.Options) {
		if endpoint != "" {
			o.BaseEndpoint = awssdk.String(endpoint)
		}
	})

	logger.Info("using aws messaging",
		slog.String("region", cfg.AWSRegion),
		slog.String("topic_arn", cfg.TopicARN),
		slog.String("queue_url", cfg.QueueURL),
		slog.String("event_bus", cfg.EventBusName),
	)

	return &Adapters{
		Notifier: NewNotifier(snsClient, cfg.TopicARN, logger),
		Events:   NewEventSink(ebClient),
		Queue:    NewQueue(sqsClient, cfg.QueueURL, cfg.VisibilityTimeout),
	}, nil
}
