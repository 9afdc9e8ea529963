package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/polkiloo/orderservice/internal/domain/model"
)

type eventPutter interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventSink emits domain events to an EventBridge bus.
type EventSink struct {
	client eventPutter
}

// NewEventSink constructs EventSink.
func NewEventSink(client eventPutter) *EventSink {
	return &EventSink{client: client}
}

// Emit puts a single event entry. A rejected entry is reported as an error.
func (s *EventSink) Emit(ctx context.Context, event model.Event) error {
	out, err := s.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Source:       awssdk.String(event.Source),
			DetailType:   awssdk.String(event.DetailType),
			Detail:       awssdk.String(event.Detail),
			EventBusName: awssdk.String(event.EventBus),
		}},
	})
	if err != nil {
		return fmt.Errorf("put events: %w", err)
	}
	if out.FailedEntryCount > 0 {
		code, msg := "unknown", ""
		if len(out.Entries) > 0 {
			code = awssdk.ToString(out.Entries[0].ErrorCode)
			msg = awssdk.ToString(out.Entries[0].ErrorMessage)
		}
		return fmt.Errorf("put events: entry rejected: %s %s", code, msg)
	}
	return nil
}
