// Package service runs the safety dashboards of registered tourists: it
// enrols them on submission, simulates their telemetry and records alerts.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"touristid/internal/safety/metrics"
	"touristid/internal/safety/models"
	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/events"
	"touristid/pkg/platform/sentinel"
	"touristid/pkg/requestcontext"
)

type DashboardStore interface {
	Create(ctx context.Context, d *models.Dashboard) error
	Find(ctx context.Context, touristID id.TouristID) (*models.Dashboard, error)
	UpdateAll(ctx context.Context, fn func(d *models.Dashboard)) (int, error)
}

type AlertStore interface {
	Append(ctx context.Context, a *models.Alert) error
	ListByTourist(ctx context.Context, touristID id.TouristID) ([]*models.Alert, error)
}

type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

type Service struct {
	dashboards DashboardStore
	alerts     AlertStore
	publisher  EventPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	random     func() float64
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRandom overrides the uniform [0,1) source driving the simulator.
func WithRandom(fn func() float64) Option {
	return func(s *Service) {
		s.random = fn
	}
}

func New(dashboards DashboardStore, alerts AlertStore, opts ...Option) (*Service, error) {
	if dashboards == nil || alerts == nil {
		return nil, errors.New("dashboard and alert stores are required")
	}
	s := &Service{
		dashboards: dashboards,
		alerts:     alerts,
		logger:     slog.Default(),
		random:     rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enroll opens a dashboard for a newly registered tourist. Enrolling twice
// keeps the existing dashboard.
func (s *Service) Enroll(ctx context.Context, touristID id.TouristID) error {
	err := s.dashboards.Create(ctx, models.NewDashboard(touristID, requestcontext.Now(ctx)))
	if errors.Is(err, sentinel.ErrConflict) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to open safety dashboard")
	}
	s.metrics.IncEnrolled()
	s.logger.InfoContext(ctx, "tourist enrolled in safety dashboard",
		"tourist_id", touristID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Status returns the dashboard with nearby services and any zone warning.
func (s *Service) Status(ctx context.Context, touristID id.TouristID) (*models.Status, error) {
	d, err := s.find(ctx, touristID)
	if err != nil {
		return nil, err
	}
	status := &models.Status{Dashboard: *d, Nearby: slices.Clone(models.NearbyServices)}
	if !d.InSafeZone {
		status.Warning = models.RestrictedAreaWarning
	}
	return status, nil
}

// Alerts lists the tourist's raised alerts, newest first.
func (s *Service) Alerts(ctx context.Context, touristID id.TouristID) ([]*models.Alert, error) {
	if _, err := s.find(ctx, touristID); err != nil {
		return nil, err
	}
	alerts, err := s.alerts.ListByTourist(ctx, touristID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return alerts, nil
}

// SOS notifies emergency contacts and the nearest police station.
func (s *Service) SOS(ctx context.Context, touristID id.TouristID) (*models.Alert, error) {
	return s.raise(ctx, touristID, models.AlertSOS)
}

// EmergencyCall contacts emergency services and shares the location.
func (s *Service) EmergencyCall(ctx context.Context, touristID id.TouristID) (*models.Alert, error) {
	return s.raise(ctx, touristID, models.AlertEmergency)
}

// raise records the alert before publishing it; an alert that was stored
// is reported as raised even when the event could not be published.
func (s *Service) raise(ctx context.Context, touristID id.TouristID, kind models.AlertKind) (*models.Alert, error) {
	d, err := s.find(ctx, touristID)
	if err != nil {
		return nil, err
	}
	alert := &models.Alert{
		ID:        id.NewAlertID(),
		TouristID: touristID,
		Kind:      kind,
		Location:  d.Location,
		Message:   kind.Message(),
		Notified:  kind.Notifies(),
		RaisedAt:  requestcontext.Now(ctx),
	}
	if err := s.alerts.Append(ctx, alert); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record alert")
	}
	s.metrics.IncAlert(string(kind))

	if s.publisher != nil {
		err := s.publisher.Emit(ctx, events.Event{
			Type:      events.TypeSafetyAlert,
			TouristID: touristID.String(),
			RequestID: requestcontext.RequestID(ctx),
			Timestamp: alert.RaisedAt,
			Attrs: map[string]string{
				"alert_id": alert.ID.String(),
				"kind":     string(kind),
				"location": alert.Location,
				"notified": strings.Join(alert.Notified, ","),
			},
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish safety alert",
				"alert_id", alert.ID.String(),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	s.logger.WarnContext(ctx, "safety alert raised",
		"alert_id", alert.ID.String(),
		"tourist_id", touristID.String(),
		"kind", string(kind),
		"request_id", requestcontext.RequestID(ctx),
	)
	return alert, nil
}

// Simulate applies one telemetry step to every dashboard.
func (s *Service) Simulate(ctx context.Context, now time.Time) (int, error) {
	n, err := s.dashboards.UpdateAll(ctx, func(d *models.Dashboard) {
		d.Step(s.random(), now)
	})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update dashboards")
	}
	s.metrics.ObserveStep(n)
	return n, nil
}

func (s *Service) find(ctx context.Context, touristID id.TouristID) (*models.Dashboard, error) {
	d, err := s.dashboards.Find(ctx, touristID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "tourist is not enrolled")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
	}
	return d, nil
}
