package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tunestudio/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(km kafka.Message, key string) string {
	for _, h := range km.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func newTestProducer(writer, dlq *fakeWriter) *Producer {
	p := &Producer{
		writer:       writer,
		defaultTopic: "studio.clients",
		dlqTopic:     "studio.dlq",
		log:          logger.Discard(),
	}
	if dlq != nil {
		p.dlqWriter = dlq
	}
	return p
}

func TestProducer_PublishUsesDefaultTopic(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, nil)

	msg, err := NewMessage().WithKey("79291234567").WithValue(map[string]int{"a": 1}).WithEventType("client.created").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "studio.clients", w.messages[0].Topic)
	assert.Equal(t, "79291234567", string(w.messages[0].Key))
	assert.Equal(t, "client.created", header(w.messages[0], HeaderEventType))
}

func TestProducer_PublishRejectsInvalidMessages(t *testing.T) {
	p := newTestProducer(&fakeWriter{}, nil)

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := newTestProducer(&fakeWriter{}, nil)

	var order []string
	for _, name := range []string{"first", "second"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	writeErr := errors.New("broker unavailable")
	w := &fakeWriter{err: writeErr}
	dlq := &fakeWriter{}
	p := newTestProducer(w, dlq)

	msg, err := NewMessage().WithTopic("studio.callbacks").WithKey("k").WithRawValue([]byte("{}")).Build()
	require.NoError(t, err)

	err = p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, writeErr)

	require.Len(t, dlq.messages, 1)
	parked := dlq.messages[0]
	assert.Empty(t, parked.Topic)
	assert.Equal(t, "studio.callbacks", header(parked, HeaderOriginalTopic))
	assert.Equal(t, writeErr.Error(), header(parked, HeaderDLQError))
	assert.Empty(t, msg.Headers[HeaderOriginalTopic], "caller's headers must not be mutated")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	dlq := &fakeWriter{}
	p := newTestProducer(w, dlq)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.True(t, dlq.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}), ErrProducerClosed)
}
