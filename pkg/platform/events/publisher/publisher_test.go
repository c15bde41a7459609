package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/pkg/platform/events"
	"touristid/pkg/platform/events/store/memory"
)

type failingSink struct{ err error }

func (f failingSink) Append(context.Context, events.Event) error { return f.err }

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), events.Event{Type: events.TypeOTPRequested, SessionID: "s-1"})
	require.NoError(t, err)

	got, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeOTPRequested, got[0].Type)
	assert.NotEmpty(t, got[0].ID)
}

func TestPublisher_SyncModeReturnsSinkError(t *testing.T) {
	boom := errors.New("broker down")
	pub := NewPublisher(failingSink{err: boom})
	defer pub.Close()

	err := pub.Emit(context.Background(), events.Event{Type: events.TypeRegistrationSubmitted})
	assert.ErrorIs(t, err, boom)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), events.Event{Type: events.TypeSafetyAlert}))
	}
	require.NoError(t, pub.Close())

	got, err := store.ListByType(context.Background(), events.TypeSafetyAlert)
	require.NoError(t, err)
	assert.Len(t, got, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull(t *testing.T) {
	pub := NewPublisher(blockingSink{release: make(chan struct{})}, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(pub.Emit(context.Background(), events.Event{Type: events.TypeOTPVerified}), ErrBufferFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Positive(t, full, "a blocked sink with a one slot buffer must drop events")
}

type blockingSink struct{ release chan struct{} }

func (b blockingSink) Append(ctx context.Context, _ events.Event) error {
	select {
	case <-b.release:
	case <-time.After(50 * time.Millisecond):
	}
	return nil
}

func TestPublisher_Timestamp(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("set from clock when missing", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))
		require.NoError(t, pub.Emit(context.Background(), events.Event{Type: events.TypeOTPVerified}))
		got, _ := store.List(context.Background())
		assert.Equal(t, fixed, got[0].Timestamp)
	})

	t.Run("existing timestamp preserved", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)
		custom := fixed.Add(-time.Hour)
		require.NoError(t, pub.Emit(context.Background(), events.Event{Type: events.TypeOTPVerified, Timestamp: custom}))
		got, _ := store.List(context.Background())
		assert.Equal(t, custom, got[0].Timestamp)
	})
}

func TestEvent_Key(t *testing.T) {
	assert.Equal(t, "s-1", events.Event{SessionID: "s-1"}.Key())
	assert.Equal(t, "TST-2024-ABCDEFGHI", events.Event{SessionID: "s-1", TouristID: "TST-2024-ABCDEFGHI"}.Key())
}
