// Package redis implements the inbound order queue on a Redis stream consumer group.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/messaging"
)

const (
	bodyField = "body"
	// DeadLetterSuffix names the stream that keeps entries without a readable body.
	DeadLetterSuffix = ".dead"
)

type streamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XAutoClaim(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XDel(ctx context.Context, stream string, ids ...string) *redis.IntCmd
}

// Queue reads entries of a stream through a consumer group. Entries that stay
// pending longer than the visibility timeout are claimed again on the next Receive.
type Queue struct {
	client     streamClient
	stream     string
	group      string
	consumer   string
	visibility time.Duration
	logger     *slog.Logger
}

// NewQueue constructs Queue. Call EnsureGroup before the first Receive.
func NewQueue(client streamClient, stream, group, consumer string, visibility time.Duration, logger *slog.Logger) *Queue {
	return &Queue{client: client, stream: stream, group: group, consumer: consumer, visibility: visibility, logger: logger}
}

// EnsureGroup creates the stream and consumer group if they do not exist yet.
func (q *Queue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Enqueue appends body to the stream and returns the entry ID.
func (q *Queue) Enqueue(ctx context.Context, body string) (string, error) {
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{bodyField: body},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}
	return id, nil
}

// Receive returns expired pending entries first, then waits up to opts.WaitTime for new ones.
func (q *Queue) Receive(ctx context.Context, opts messaging.ReceiveOptions) ([]messaging.Message, error) {
	limit := opts.MaxMessages
	if limit <= 0 {
		limit = 1
	}

	claimed, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.visibility,
		Start:    "0-0",
		Count:    int64(limit),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}

	messages := q.toMessages(ctx, claimed)
	if len(messages) >= limit {
		return messages[:limit], nil
	}

	// Block < 0 omits BLOCK; zero would wait forever.
	block := opts.WaitTime
	if block <= 0 || len(messages) > 0 {
		block = -1
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    int64(limit - len(messages)),
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return messages, nil
		}
		return messages, fmt.Errorf("xreadgroup: %w", err)
	}

	for _, s := range streams {
		messages = append(messages, q.toMessages(ctx, s.Messages)...)
	}
	return messages, nil
}

// Delete acknowledges and removes the entry identified by receiptHandle.
func (q *Queue) Delete(ctx context.Context, receiptHandle string) error {
	acked, err := q.client.XAck(ctx, q.stream, q.group, receiptHandle).Result()
	if err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	if acked == 0 {
		return fmt.Errorf("%w: entry %s is not pending", domainErrors.ErrNotFound, receiptHandle)
	}
	if err := q.client.XDel(ctx, q.stream, receiptHandle).Err(); err != nil {
		return fmt.Errorf("xdel: %w", err)
	}
	return nil
}

func (q *Queue) toMessages(ctx context.Context, entries []redis.XMessage) []messaging.Message {
	messages := make([]messaging.Message, 0, len(entries))
	for _, e := range entries {
		body, ok := e.Values[bodyField].(string)
		if !ok {
			q.deadLetter(ctx, e)
			continue
		}
		messages = append(messages, messaging.Message{ID: e.ID, Body: body, ReceiptHandle: e.ID})
	}
	return messages
}

// deadLetter moves an entry without a body out of the consumer group. On failure
// the entry stays pending and is retried on a later Receive.
func (q *Queue) deadLetter(ctx context.Context, e redis.XMessage) {
	values := make(map[string]any, len(e.Values)+1)
	for k, v := range e.Values {
		values[k] = v
	}
	values["source_id"] = e.ID

	dead := q.stream + DeadLetterSuffix
	err := q.client.XAdd(ctx, &redis.XAddArgs{Stream: dead, Values: values}).Err()
	if err == nil {
		err = q.client.XAck(ctx, q.stream, q.group, e.ID).Err()
	}
	if err == nil {
		err = q.client.XDel(ctx, q.stream, e.ID).Err()
	}
	if err != nil {
		q.logger.Warn("dead-letter stream entry failed",
			slog.String("entry_id", e.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	q.logger.Warn("moved stream entry without body to dead-letter stream",
		slog.String("entry_id", e.ID),
		slog.String("stream", dead),
	)
}
