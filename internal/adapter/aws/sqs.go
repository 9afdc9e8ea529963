package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/polkiloo/orderservice/internal/domain/messaging"
)

const (
	maxBatchSize = 10
	maxWaitTime  = 20 * time.Second
)

type sqsClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Queue reads order notifications from an SQS queue.
type Queue struct {
	client     sqsClient
	url        string
	visibility time.Duration
}

// NewQueue constructs Queue. A zero visibility keeps the queue's own default.
func NewQueue(client sqsClient, url string, visibility time.Duration) *Queue {
	return &Queue{client: client, url: url, visibility: visibility}
}

// Receive long-polls for up to opts.MaxMessages messages, clamped to SQS limits.
func (q *Queue) Receive(ctx context.Context, opts messaging.ReceiveOptions) ([]messaging.Message, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            awssdk.String(q.url),
		MaxNumberOfMessages: int32(clamp(opts.MaxMessages, 1, maxBatchSize)),
		WaitTimeSeconds:     int32(clamp(int(opts.WaitTime/time.Second), 0, int(maxWaitTime/time.Second))),
	}
	if q.visibility > 0 {
		input.VisibilityTimeout = int32(q.visibility / time.Second)
	}

	out, err := q.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("sqs receive: %w", err)
	}

	messages := make([]messaging.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, messaging.Message{
			ID:            awssdk.ToString(m.MessageId),
			Body:          awssdk.ToString(m.Body),
			ReceiptHandle: awssdk.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

// Delete acknowledges a received message.
func (q *Queue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      awssdk.String(q.url),
		ReceiptHandle: awssdk.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("sqs delete: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
