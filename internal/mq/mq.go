package mq

import (
	"context"
	"encoding/json"

	"github.com/bioenroll/gateway/types"
)

// ChannelEnrollment carries enrollment events for downstream
// device-sync workers.
const ChannelEnrollment = "enrollment-events"

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the gateway.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Events publishes enrollment events over a backend so that workers
// watching the terminal fleet can pick up pending device-side steps.
type Events struct {
	backend Backend
}

// NewEvents constructs an Events publisher for the provided backend.
func NewEvents(backend Backend) *Events {
	return &Events{backend: backend}
}

// PublishEnrollment sends an event as JSON with routing attributes and
// returns the broker message ID.
func (e *Events) PublishEnrollment(ctx context.Context, event types.EnrollmentEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	attrs := map[string]string{
		"action": event.Action,
		"userId": event.UserID,
	}
	return e.backend.Publish(ctx, ChannelEnrollment, data, attrs)
}

// SubscribeEnrollment consumes enrollment events, decoding each payload
// before handing it to fn.
func (e *Events) SubscribeEnrollment(ctx context.Context, fn func(ctx context.Context, event types.EnrollmentEvent) error) error {
	return e.backend.Subscribe(ctx, ChannelEnrollment, func(ctx context.Context, msg Message) error {
		var event types.EnrollmentEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return err
		}
		return fn(ctx, event)
	})
}

// Close closes the underlying backend.
func (e *Events) Close() error {
	return e.backend.Close()
}
