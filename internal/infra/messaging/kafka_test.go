//go:build unit

package messaging

import (
	"context"
	"errors"
	"testing"

	"hotel-booking/internal/usecase/commands"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.written = append(w.written, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProducer_PublishBatch(t *testing.T) {
	msgs := []commands.EventMessage{
		{ID: 41, Key: "BK1", Type: "booking.created", Payload: []byte(`{"type":"booking.created"}`)},
		{ID: 42, Key: "BK2", Type: "booking.confirmed", Payload: []byte(`{"type":"booking.confirmed"}`)},
	}

	t.Run("keys by booking id and tags headers", func(t *testing.T) {
		w := &fakeWriter{}
		results, err := newProducer(w).PublishBatch(context.Background(), msgs)
		require.NoError(t, err)
		assert.Equal(t, []error{nil, nil}, results)

		require.Len(t, w.written, 2)
		assert.Equal(t, "BK1", string(w.written[0].Key))
		assert.Equal(t, "41", header(w.written[0], headerEventID))
		assert.Equal(t, "booking.confirmed", header(w.written[1], headerEventType))
		assert.JSONEq(t, `{"type":"booking.confirmed"}`, string(w.written[1].Value))
	})

	t.Run("per-message write errors", func(t *testing.T) {
		rejected := errors.New("message too large")
		w := &fakeWriter{err: kafka.WriteErrors{nil, rejected}}
		results, err := newProducer(w).PublishBatch(context.Background(), msgs)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.NoError(t, results[0])
		assert.ErrorIs(t, results[1], rejected)
	})

	t.Run("whole batch failure", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("dial tcp: connection refused")}
		results, err := newProducer(w).PublishBatch(context.Background(), msgs)
		assert.Error(t, err)
		assert.Nil(t, results)
	})

	t.Run("empty batch writes nothing", func(t *testing.T) {
		w := &fakeWriter{}
		results, err := newProducer(w).PublishBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Empty(t, w.written)
	})

	t.Run("close", func(t *testing.T) {
		w := &fakeWriter{}
		require.NoError(t, newProducer(w).Close())
		assert.True(t, w.closed)
	})
}
