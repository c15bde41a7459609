// Package service owns registration wizard sessions across requests: it
// restores the wizard from the session store, applies one operation under a
// per-session lock, and saves the result.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"touristid/internal/registration/metrics"
	"touristid/internal/registration/models"
	"touristid/internal/registration/store/document"
	"touristid/internal/registration/wizard"
	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/events"
	"touristid/pkg/platform/sentinel"
	"touristid/pkg/requestcontext"
)

type SessionStore interface {
	Save(ctx context.Context, sessionID id.SessionID, snap models.Snapshot) error
	Find(ctx context.Context, sessionID id.SessionID) (models.Snapshot, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

type DocumentStore interface {
	Put(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot, blob document.Blob) error
	Get(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot) (document.Blob, error)
	DeleteAll(ctx context.Context, sessionID id.SessionID) error
	// Touch restarts the TTL of every stored slot of the session.
	Touch(ctx context.Context, sessionID id.SessionID) error
}

type RegistryStore interface {
	Save(ctx context.Context, reg *models.Registration) error
	FindByTouristID(ctx context.Context, touristID id.TouristID) (*models.Registration, error)
	Delete(ctx context.Context, regID id.RegistrationID) error
}

// EventPublisher emits domain events. Submission is fail-closed; the other
// events are best-effort.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// SafetyEnroller opens a safety dashboard for a newly registered tourist.
type SafetyEnroller interface {
	Enroll(ctx context.Context, touristID id.TouristID) error
}

// TokenIssuer signs the bearer token handed out by Start.
type TokenIssuer interface {
	Issue(sessionID id.SessionID, device string, ttl time.Duration) (string, time.Time, error)
}

// Config holds the session policy.
type Config struct {
	SessionTTL     time.Duration
	MaxUploadBytes int64
	IDHashKey      string
}

const (
	defaultSessionTTL     = 30 * time.Minute
	defaultMaxUploadBytes = 5 << 20
)

type Service struct {
	sessions  SessionStore
	documents DocumentStore
	registry  RegistryStore
	tokens    TokenIssuer
	publisher EventPublisher
	safety    SafetyEnroller
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	hasher    *idNumberHasher
	tx        *shardedSessionTx
	cfg       Config
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithSafetyEnroller(e SafetyEnroller) Option {
	return func(s *Service) {
		s.safety = e
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New wires the service. Sessions, documents, registry and tokens are required.
func New(sessions SessionStore, documents DocumentStore, registry RegistryStore, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if sessions == nil || documents == nil || registry == nil || tokens == nil {
		return nil, errors.New("session, document, registry stores and token issuer are required")
	}
	s := &Service{
		sessions:  sessions,
		documents: documents,
		registry:  registry,
		tokens:    tokens,
		logger:    slog.Default(),
		tracer:    otel.Tracer("touristid/registration"),
		tx:        &shardedSessionTx{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.SessionTTL <= 0 {
		s.cfg.SessionTTL = defaultSessionTTL
	}
	if s.cfg.MaxUploadBytes <= 0 {
		s.cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	hasher, err := newIDNumberHasher(s.cfg.IDHashKey)
	if err != nil {
		return nil, err
	}
	s.hasher = hasher
	return s, nil
}

// StartResult is returned when a session is opened.
type StartResult struct {
	SessionID id.SessionID
	Token     string
	ExpiresAt time.Time
	View      models.View
}

// Start opens a fresh wizard session for the device in ctx.
func (s *Service) Start(ctx context.Context) (*StartResult, error) {
	ctx, end := s.span(ctx, "Start", id.SessionID{})
	var err error
	defer func() { end(err) }()

	sessionID := id.NewSessionID()
	device := requestcontext.Device(ctx)
	now := requestcontext.Now(ctx)

	w := wizard.New(wizard.WithClock(func() time.Time { return now }), wizard.WithDevice(device))
	defer w.Close()

	if err = s.sessions.Save(ctx, sessionID, w.Snapshot()); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to open registration session")
		return nil, err
	}
	token, expiresAt, tokenErr := s.tokens.Issue(sessionID, device, s.cfg.SessionTTL)
	if tokenErr != nil {
		err = tokenErr
		return nil, err
	}

	s.metrics.IncSessionsStarted()
	s.notify(ctx, events.Event{
		Type:      events.TypeSessionStarted,
		SessionID: sessionID.String(),
		Attrs:     map[string]string{"device": device},
	})
	s.logger.InfoContext(ctx, "registration session started",
		"session_id", sessionID.String(),
		"device", device,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &StartResult{SessionID: sessionID, Token: token, ExpiresAt: expiresAt, View: w.View()}, nil
}

// Get returns the current view with the OTP countdown caught up.
func (s *Service) Get(ctx context.Context, sessionID id.SessionID) (models.View, error) {
	ctx, end := s.span(ctx, "Get", sessionID)
	w, err := s.load(ctx, sessionID)
	if err != nil {
		end(err)
		return models.View{}, err
	}
	defer w.Close()
	end(nil)
	return w.View(), nil
}

// UpdateFields applies every field or none. Keys are applied in wire order
// of models.AllFields so an idNumber edit and its OTP reset are deterministic.
func (s *Service) UpdateFields(ctx context.Context, sessionID id.SessionID, fields map[string]any) (models.View, error) {
	if len(fields) == 0 {
		return models.View{}, dErrors.New(dErrors.CodeBadRequest, "fields must not be empty")
	}
	return s.mutate(ctx, "UpdateFields", sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		for name := range fields {
			if !models.IsField(name) {
				return dErrors.New(dErrors.CodeValidation, "unknown field \""+name+"\"")
			}
		}
		for _, f := range models.AllFields {
			v, ok := fields[string(f)]
			if !ok {
				continue
			}
			if err := w.UpdateField(f, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Advance moves to the next step when the current one is complete.
func (s *Service) Advance(ctx context.Context, sessionID id.SessionID) (models.View, error) {
	return s.mutate(ctx, "Advance", sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		before := w.Step()
		if err := w.Advance(); err != nil {
			return err
		}
		if after := w.Step(); after != before {
			s.metrics.IncStepAdvance(after.Label())
		}
		return nil
	})
}

// Retreat moves back one step.
func (s *Service) Retreat(ctx context.Context, sessionID id.SessionID) (models.View, error) {
	return s.mutate(ctx, "Retreat", sessionID, func(_ context.Context, w *wizard.Wizard) error {
		return w.Retreat()
	})
}

// Discard drops the session and its documents. Unknown sessions are not an
// error.
func (s *Service) Discard(ctx context.Context, sessionID id.SessionID) error {
	ctx, end := s.span(ctx, "Discard", sessionID)
	err := s.tx.RunInTx(ctx, sessionID.String(), func(ctx context.Context) error {
		if err := s.documents.DeleteAll(ctx, sessionID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to discard documents")
		}
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to discard session")
		}
		return nil
	})
	end(err)
	return err
}

// mutate runs fn against the restored wizard under the session lock and
// saves the result. When fn fails nothing is saved, so every operation is
// all-or-nothing.
func (s *Service) mutate(ctx context.Context, op string, sessionID id.SessionID, fn func(ctx context.Context, w *wizard.Wizard) error) (models.View, error) {
	ctx, end := s.span(ctx, op, sessionID)
	var view models.View
	err := s.tx.RunInTx(ctx, sessionID.String(), func(ctx context.Context) error {
		w, err := s.load(ctx, sessionID)
		if err != nil {
			return err
		}
		defer w.Close()

		queued := &pendingEvents{}
		if err := fn(context.WithValue(ctx, pendingEventsKey{}, queued), w); err != nil {
			return err
		}
		snap := w.Snapshot()
		if err := s.sessions.Save(ctx, sessionID, snap); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration session")
		}
		if len(snap.Documents.Attached()) > 0 {
			if err := s.documents.Touch(ctx, sessionID); err != nil {
				s.logger.WarnContext(ctx, "failed to extend document lifetime",
					"session_id", sessionID.String(),
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
		}
		for _, event := range queued.events {
			s.notify(ctx, event)
		}
		view = w.View()
		return nil
	})
	end(err)
	return view, err
}

// load restores the wizard and applies elapsed countdown seconds.
func (s *Service) load(ctx context.Context, sessionID id.SessionID) (*wizard.Wizard, error) {
	snap, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "registration session not found")
		case errors.Is(err, sentinel.ErrExpired):
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "registration session expired")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration session")
		}
	}
	now := requestcontext.Now(ctx)
	w := wizard.Restore(snap, wizard.WithClock(func() time.Time { return now }))
	w.CatchUp(now)
	return w, nil
}

type pendingEventsKey struct{}

type pendingEvents struct {
	events []events.Event
}

// notifySaved publishes event once the session state it describes is
// stored. Inside mutate it is held until the save succeeds.
func (s *Service) notifySaved(ctx context.Context, event events.Event) {
	if p, ok := ctx.Value(pendingEventsKey{}).(*pendingEvents); ok {
		p.events = append(p.events, event)
		return
	}
	s.notify(ctx, event)
}

// notify publishes a best-effort event; failures are logged only.
func (s *Service) notify(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event",
			"type", event.Type,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}

// span opens a tracing span and returns a func that records the outcome,
// the latency metric, and ends the span.
func (s *Service) span(ctx context.Context, op string, sessionID id.SessionID) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registration."+op)
	if !sessionID.IsNil() {
		span.SetAttributes(attribute.String("session_id", sessionID.String()))
	}
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		s.metrics.ObserveOperation(op, time.Since(start))
	}
}
