package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is anything that travels on the bus.
// CorrelationKey is used as the kafka record key: all messages of a saga, or of a collecting round, share a partition.
type Message interface {
	MessageType() string
	CorrelationKey() string
}

type Envelope struct {
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	Host      string          `json:"host,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Sent      time.Time       `json:"sent"`
}

func Wrap(msg Message, host string, requestID string, sent time.Time) (Envelope, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s: %w", msg.MessageType(), err)
	}

	return Envelope{
		Type:      msg.MessageType(),
		Key:       msg.CorrelationKey(),
		Payload:   payload,
		Host:      host,
		RequestID: requestID,
		Sent:      sent,
	}, nil
}

// Unwrap decodes the envelope payload.
func Unwrap[T Message](env Envelope) (T, error) {
	var ret T

	if env.Type != ret.MessageType() {
		return ret, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedType, ret.MessageType(), env.Type)
	}

	err := json.Unmarshal(env.Payload, &ret)
	if err != nil {
		return ret, fmt.Errorf("failed to unmarshal %s: %w", env.Type, err)
	}

	return ret, nil
}
