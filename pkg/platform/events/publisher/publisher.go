// Package publisher fronts an events.Sink.
//
// In sync mode Emit blocks until the sink accepts the event and returns its
// error, so callers can fail closed. With WithAsyncBuffer, Emit enqueues and
// a single worker drains into the sink; a full buffer drops the event with
// ErrBufferFull. Close drains whatever is queued.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"touristid/pkg/platform/events"
)

var ErrBufferFull = errors.New("event buffer full")

var (
	eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "touristid_events_emitted_total",
		Help: "Events accepted by the sink, by type",
	}, []string{"type"})
	eventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "touristid_events_failed_total",
		Help: "Events the sink rejected or the buffer dropped, by type",
	}, []string{"type"})
)

type Publisher struct {
	sink   events.Sink
	logger *slog.Logger
	now    func() time.Time

	queue chan events.Event
	wg    sync.WaitGroup
	once  sync.Once
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer switches to buffered delivery with the given capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan events.Event, size)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(sink events.Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit fills in ID and Timestamp when unset and hands the event on.
func (p *Publisher) Emit(ctx context.Context, event events.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}

	if p.queue == nil {
		return p.deliver(ctx, event)
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		eventsFailed.WithLabelValues(string(event.Type)).Inc()
		if p.logger != nil {
			p.logger.WarnContext(ctx, "event dropped", "type", event.Type, "request_id", event.RequestID)
		}
		return ErrBufferFull
	}
}

func (p *Publisher) deliver(ctx context.Context, event events.Event) error {
	if err := p.sink.Append(ctx, event); err != nil {
		eventsFailed.WithLabelValues(string(event.Type)).Inc()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "event delivery failed",
				"type", event.Type,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return err
	}
	eventsEmitted.WithLabelValues(string(event.Type)).Inc()
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.queue {
		_ = p.deliver(context.Background(), event)
	}
}

// Close drains the async buffer. Emit must not be called after Close.
func (p *Publisher) Close() error {
	p.once.Do(func() {
		if p.queue != nil {
			close(p.queue)
			p.wg.Wait()
		}
	})
	return nil
}
