package contracts

import (
	"context"
	"time"

	"tunestudio/pkg/kafka"
)

const (
	EventClientCreated      = "client.created"
	EventCallbackRequested  = "callback.requested"
	EventOrderStatusChanged = "order.status_changed"
	EventSchemaVersion      = "1"
	EventSourceStudioAPI    = "studio-api"

	// HeaderCallbackSource names the form a callback came from so consumers
	// can route without decoding the payload.
	HeaderCallbackSource = "callback-source"
)

// EventHeader is an extra header set on a published event.
type EventHeader struct {
	Key   string
	Value string
}

// ClientCreated is published after a new client is stored.
type ClientCreated struct {
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CallbackRequested is published for every accepted callback form. Phone is
// already in display form.
type CallbackRequested struct {
	CallbackID string    `json:"callback_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Message    string    `json:"message,omitempty"`
	Source     string    `json:"source"`
	ClientID   string    `json:"client_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrderStatusChanged struct {
	OrderID     string    `json:"order_id"`
	Number      string    `json:"number"`
	ClientPhone string    `json:"client_phone,omitempty"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ChangedAt   time.Time `json:"changed_at"`
}

// Publish builds an event message and hands it to p. A nil publisher is a
// no-op so services work with events disabled.
func Publish(ctx context.Context, p kafka.Publisher, topic, eventType, key string, payload any, headers ...EventHeader) error {
	if p == nil {
		return nil
	}

	builder := kafka.NewMessage()
	for _, h := range headers {
		if h.Value != "" {
			builder.WithHeader(h.Key, h.Value)
		}
	}

	msg, err := builder.
		WithTopic(topic).
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSchemaVersion(EventSchemaVersion).
		WithSource(EventSourceStudioAPI).
		WithCorrelationID(RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return err
	}

	return p.Publish(ctx, msg)
}
