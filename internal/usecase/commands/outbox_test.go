//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/infra/payment"
	"hotel-booking/internal/pkg/clock"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]commands.EventMessage
	// failIDs rejects individual messages; batchErr rejects the whole call.
	failIDs  map[int64]bool
	batchErr error
}

func (p *recordingPublisher) PublishBatch(_ context.Context, msgs []commands.EventMessage) ([]error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, append([]commands.EventMessage(nil), msgs...))
	if p.batchErr != nil {
		return nil, p.batchErr
	}
	results := make([]error, len(msgs))
	for i, m := range msgs {
		if p.failIDs[m.ID] {
			results[i] = errs.New("leader not available")
		}
	}
	return results, nil
}

func seedEvents(t *testing.T, store *memStore, n int) {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC))
	cmds := commands.NewBookingCommands(store, &fakeGateway{}, payment.NewSigner(testGatewaySecret), nil, nil, clk, commands.BookingSettings{})
	for i := 0; i < n; i++ {
		_, err := cmds.CreateOrder(context.Background(), orderRequest("standard"))
		require.NoError(t, err)
	}
}

func TestRelayPending(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 11, 1, 10, 5, 0, 0, time.UTC))

	t.Run("publishes every pending event keyed by booking id", func(t *testing.T) {
		store := newMemStore(map[inventory.RoomType]int{inventory.RoomStandard: 5})
		seedEvents(t, store, 3)
		pub := &recordingPublisher{}
		relay := commands.NewOutboxCommands(store, pub, clk)

		n, err := relay.RelayPending(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		require.Len(t, pub.batches, 1)
		for _, m := range pub.batches[0] {
			assert.NotEmpty(t, m.Key)
			assert.Equal(t, "booking.created", m.Type)
			assert.Contains(t, string(m.Payload), m.Key)
		}

		n, err = relay.RelayPending(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Len(t, pub.batches, 1, "nothing left to publish")
	})

	t.Run("respects the batch limit", func(t *testing.T) {
		store := newMemStore(map[inventory.RoomType]int{inventory.RoomStandard: 5})
		seedEvents(t, store, 3)
		pub := &recordingPublisher{}
		relay := commands.NewOutboxCommands(store, pub, clk)

		n, err := relay.RelayPending(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = relay.RelayPending(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("per-message failures stay pending for the next run", func(t *testing.T) {
		store := newMemStore(map[inventory.RoomType]int{inventory.RoomStandard: 5})
		seedEvents(t, store, 3)
		pub := &recordingPublisher{failIDs: map[int64]bool{2: true}}
		relay := commands.NewOutboxCommands(store, pub, clk)

		n, err := relay.RelayPending(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, map[int64]string{1: "published", 2: "pending", 3: "published"}, store.eventStatuses())

		pub.failIDs = nil
		n, err = relay.RelayPending(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, int64(2), pub.batches[1][0].ID)
	})

	t.Run("broker down marks the batch failed and reports the error", func(t *testing.T) {
		store := newMemStore(map[inventory.RoomType]int{inventory.RoomStandard: 5})
		seedEvents(t, store, 2)
		pub := &recordingPublisher{batchErr: errs.New("dial tcp: connection refused")}
		relay := commands.NewOutboxCommands(store, pub, clk)

		n, err := relay.RelayPending(ctx, 10)
		require.Error(t, err)
		assert.False(t, errs.Is(err, commands.ErrStoreUnavailable))
		assert.Zero(t, n)
		assert.Equal(t, map[int64]string{1: "pending", 2: "pending"}, store.eventStatuses())
	})

	t.Run("events give up after repeated failures", func(t *testing.T) {
		store := newMemStore(map[inventory.RoomType]int{inventory.RoomStandard: 5})
		seedEvents(t, store, 1)
		pub := &recordingPublisher{failIDs: map[int64]bool{1: true}}
		relay := commands.NewOutboxCommands(store, pub, clk)

		for i := 0; i < 10; i++ {
			_, err := relay.RelayPending(ctx, 10)
			require.NoError(t, err)
		}
		assert.Equal(t, map[int64]string{1: "failed"}, store.eventStatuses())
		assert.Len(t, pub.batches, 10)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMemStore(map[inventory.RoomType]int{inventory.RoomStandard: 5})
		store.failOn["events.claim"] = errInjected
		relay := commands.NewOutboxCommands(store, &recordingPublisher{}, clk)

		_, err := relay.RelayPending(ctx, 10)
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrStoreUnavailable))
	})
}
