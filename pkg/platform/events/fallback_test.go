package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touristid/pkg/platform/circuit"
	"touristid/pkg/platform/events"
	"touristid/pkg/platform/events/store/memory"
)

type flakySink struct {
	err   error
	count int
}

func (f *flakySink) Append(context.Context, events.Event) error {
	f.count++
	return f.err
}

func TestFallbackSink(t *testing.T) {
	ctx := context.Background()
	down := errors.New("broker down")
	primary := &flakySink{err: down}
	fallback := memory.NewInMemoryStore()
	sink := events.NewFallbackSink(primary, fallback,
		circuit.New("kafka", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2)), nil)

	event := events.Event{ID: "e-1", Type: events.TypeRegistrationSubmitted}

	err := sink.Append(ctx, event)
	assert.ErrorIs(t, err, down, "below threshold the primary error is returned")
	assert.False(t, sink.Degraded())

	require.NoError(t, sink.Append(ctx, event), "opening the breaker diverts to the fallback")
	assert.True(t, sink.Degraded())
	got, err := fallback.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	primary.err = nil
	require.NoError(t, sink.Append(ctx, event))
	assert.True(t, sink.Degraded(), "one success is not enough to close")
	require.NoError(t, sink.Append(ctx, event))
	assert.False(t, sink.Degraded())
	assert.Equal(t, 4, primary.count, "primary is tried on every event")

	got, err = fallback.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
