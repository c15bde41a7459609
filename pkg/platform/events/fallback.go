package events

import (
	"context"
	"log/slog"

	"touristid/pkg/platform/circuit"
)

// FallbackSink writes to a primary sink and diverts to a fallback once the
// breaker opens. The primary is still tried on every event; while the
// breaker is open a primary failure is absorbed by the fallback and a
// success counts toward closing.
type FallbackSink struct {
	primary  Sink
	fallback Sink
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackSink(primary, fallback Sink, breaker *circuit.Breaker, logger *slog.Logger) *FallbackSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackSink{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FallbackSink) Append(ctx context.Context, event Event) error {
	err := s.primary.Append(ctx, event)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "event sink recovered", "breaker", s.breaker.Name())
		}
		return nil
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "event sink degraded, using fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	if !useFallback {
		return err
	}
	return s.fallback.Append(ctx, event)
}

// Degraded reports whether events are currently going to the fallback.
func (s *FallbackSink) Degraded() bool {
	return s.breaker.IsOpen()
}
