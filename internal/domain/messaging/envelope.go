package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
)

// Envelope mirrors the notification wrapper a topic subscription puts around
// the published payload before it lands on a queue.
type Envelope struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicArn  string `json:"TopicArn,omitempty"`
	Message   string `json:"Message"`
	Timestamp string `json:"Timestamp"`
}

// WrapNotification encodes payload into a notification envelope.
func WrapNotification(topic, payload string) (string, error) {
	env := Envelope{
		Type:      "Notification",
		MessageID: uuid.NewString(),
		TopicArn:  topic,
		Message:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrSerialization, err)
	}
	return string(data), nil
}

// UnwrapNotification extracts the inner payload from an envelope body.
func UnwrapNotification(body string) (string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrInvalidEnvelope, err)
	}
	field, ok := raw["Message"]
	if !ok {
		return "", fmt.Errorf("%w: missing Message", domainErrors.ErrInvalidEnvelope)
	}
	var payload string
	if err := json.Unmarshal(field, &payload); err != nil {
		return "", fmt.Errorf("%w: Message is not a string", domainErrors.ErrInvalidEnvelope)
	}
	return payload, nil
}
