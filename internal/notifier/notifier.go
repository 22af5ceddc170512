// Package notifier turns callback events into staff notifications.
package notifier

import (
	"context"
	"fmt"
	"time"

	"tunestudio/pkg/contracts"
	"tunestudio/pkg/kafka"
	"tunestudio/pkg/logger"
	"tunestudio/pkg/phone"
)

type Notification struct {
	CallbackID string
	Name       string
	Phone      string
	Message    string
	Source     string
	ClientID   string
	ReceivedAt time.Time
}

// Line renders the notification the way staff read it.
func (n Notification) Line() string {
	line := fmt.Sprintf("Call back %s at %s", n.Name, n.Phone)
	if n.ClientID != "" {
		line += " (existing client)"
	}
	if n.Message != "" {
		line += ": " + n.Message
	}
	return line
}

type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// LogSink writes notifications to the service log.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, n Notification) error {
	s.log.Info(n.Line(),
		"callback_id", n.CallbackID,
		"phone", n.Phone,
		"source", n.Source,
		"client_id", n.ClientID,
		"received_at", n.ReceivedAt,
	)
	return nil
}

type Handler struct {
	sink Sink
	log  *logger.Logger
}

func NewHandler(sink Sink, log *logger.Logger) *Handler {
	return &Handler{
		sink: sink,
		log:  log,
	}
}

// Handle is a kafka.MessageHandler. Events other than callback.requested are
// skipped. Undecodable payloads and unusable phones are permanent failures;
// sink errors are retried.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != contracts.EventCallbackRequested {
		h.log.Debug("Skipping event", "event_type", eventType, "offset", msg.Offset)
		return nil
	}

	var event contracts.CallbackRequested
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}

	display := phone.Format(event.Phone)
	if !phone.IsCanonical(phone.Normalize(display)) {
		return kafka.NewPermanentError("callback event carries an unusable phone", fmt.Errorf("phone %q", event.Phone))
	}

	source := event.Source
	if header, ok := msg.GetHeader(contracts.HeaderCallbackSource); ok && header != "" {
		source = header
	}

	n := Notification{
		CallbackID: event.CallbackID,
		Name:       event.Name,
		Phone:      display,
		Message:    event.Message,
		Source:     source,
		ClientID:   event.ClientID,
		ReceivedAt: event.CreatedAt,
	}
	if err := h.sink.Notify(ctx, n); err != nil {
		return kafka.NewTransientError("notification delivery failed", err)
	}
	return nil
}
