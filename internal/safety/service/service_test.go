package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"touristid/internal/safety/metrics"
	"touristid/internal/safety/models"
	"touristid/internal/safety/store/alert"
	"touristid/internal/safety/store/dashboard"
	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/events"
	eventsmemory "touristid/pkg/platform/events/store/memory"
	"touristid/pkg/platform/events/publisher"
	"touristid/pkg/requestcontext"
)

const tourist id.TouristID = "TST-2024-ABCDEFGHI"

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, events.Event) error { return errors.New("broker down") }

// =============================================================================
// Safety Service Test Suite
// =============================================================================

type SafetySuite struct {
	suite.Suite
	events  *eventsmemory.InMemoryStore
	alerts  *alert.InMemoryStore
	metrics *metrics.Metrics
	service *Service
	now     time.Time
	samples []float64
}

func TestSafetySuite(t *testing.T) {
	suite.Run(t, new(SafetySuite))
}

func (s *SafetySuite) SetupTest() {
	s.events = eventsmemory.NewInMemoryStore()
	s.alerts = alert.NewInMemory()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.samples = nil

	var err error
	s.service, err = New(dashboard.NewInMemory(), s.alerts,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithEventPublisher(publisher.NewPublisher(s.events)),
		WithMetrics(s.metrics),
		WithRandom(s.nextSample),
	)
	s.Require().NoError(err)
}

func (s *SafetySuite) nextSample() float64 {
	if len(s.samples) == 0 {
		return 0.5
	}
	v := s.samples[0]
	s.samples = s.samples[1:]
	return v
}

func (s *SafetySuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *SafetySuite) TestNew() {
	_, err := New(nil, s.alerts)
	s.Error(err)
}

// =============================================================================
// Enrolment and status
// =============================================================================

func (s *SafetySuite) TestEnroll() {
	s.Require().NoError(s.service.Enroll(s.ctx(), tourist))

	status, err := s.service.Status(s.ctx(), tourist)
	s.Require().NoError(err)
	s.Equal(models.InitialSafetyScore, status.Dashboard.SafetyScore)
	s.Equal(models.InitialBatteryLevel, status.Dashboard.BatteryLevel)
	s.True(status.Dashboard.InSafeZone)
	s.Equal("Shillong, Meghalaya", status.Dashboard.Location)
	s.Equal(s.now, status.Dashboard.EnrolledAt)
	s.Len(status.Nearby, 3)
	s.Empty(status.Warning)

	s.Run("enrolling again keeps the dashboard", func() {
		_, err := s.service.Simulate(s.ctx(), s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.service.Enroll(s.ctx(), tourist))
		status, err := s.service.Status(s.ctx(), tourist)
		s.Require().NoError(err)
		s.InDelta(77.9, status.Dashboard.BatteryLevel, 1e-9)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Enrolled))
	})
}

func (s *SafetySuite) TestStatus_NotEnrolled() {
	_, err := s.service.Status(s.ctx(), tourist)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Simulator
// =============================================================================

func (s *SafetySuite) TestSimulate() {
	s.Require().NoError(s.service.Enroll(s.ctx(), tourist))

	s.samples = []float64{0, 0, 0, 0}
	for range 4 {
		_, err := s.service.Simulate(s.ctx(), s.now)
		s.Require().NoError(err)
	}

	status, err := s.service.Status(s.ctx(), tourist)
	s.Require().NoError(err)
	s.Equal(models.MinSafetyScore+5, status.Dashboard.SafetyScore)
	s.True(status.Dashboard.InSafeZone)

	s.samples = []float64{0}
	n, err := s.service.Simulate(s.ctx(), s.now)
	s.Require().NoError(err)
	s.Equal(1, n)

	status, err = s.service.Status(s.ctx(), tourist)
	s.Require().NoError(err)
	s.False(status.Dashboard.InSafeZone)
	s.Equal(models.RestrictedAreaWarning, status.Warning)
	s.Equal(5.0, testutil.ToFloat64(s.metrics.SimulatorSteps))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.DashboardsActive))
}

func (s *SafetySuite) TestSimulatorRun() {
	s.Require().NoError(s.service.Enroll(s.ctx(), tourist))
	sim := NewSimulator(s.service, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	s.Eventually(func() bool {
		return testutil.ToFloat64(s.metrics.SimulatorSteps) >= 3
	}, time.Second, time.Millisecond)
	cancel()
	s.NoError(<-done)
}

// =============================================================================
// Alerts
// =============================================================================

func (s *SafetySuite) TestSOS() {
	s.Require().NoError(s.service.Enroll(s.ctx(), tourist))

	a, err := s.service.SOS(s.ctx(), tourist)
	s.Require().NoError(err)
	s.Equal(models.AlertSOS, a.Kind)
	s.Equal("SOS signal sent! Emergency contacts and nearest police station notified.", a.Message)
	s.Equal([]string{models.NotifyEmergencyContacts, models.NotifyPolice}, a.Notified)
	s.Equal(s.now, a.RaisedAt)

	published, err := s.events.ListByType(context.Background(), events.TypeSafetyAlert)
	s.Require().NoError(err)
	s.Require().Len(published, 1)
	s.Equal(tourist.String(), published[0].TouristID)
	s.Equal("sos", published[0].Attrs["kind"])
	s.Equal(a.ID.String(), published[0].Attrs["alert_id"])
}

func (s *SafetySuite) TestEmergencyCall() {
	s.Require().NoError(s.service.Enroll(s.ctx(), tourist))

	a, err := s.service.EmergencyCall(s.ctx(), tourist)
	s.Require().NoError(err)
	s.Equal("Emergency services contacted! Your location has been shared.", a.Message)
	s.Equal("Shillong, Meghalaya", a.Location)

	list, err := s.service.Alerts(s.ctx(), tourist)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(a.ID, list[0].ID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Alerts.WithLabelValues("emergency")))
}

func (s *SafetySuite) TestAlert_NotEnrolled() {
	_, err := s.service.SOS(s.ctx(), tourist)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *SafetySuite) TestAlert_PublishFailureStillRecords() {
	svc, err := New(dashboard.NewInMemory(), s.alerts,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithEventPublisher(failingPublisher{}),
	)
	s.Require().NoError(err)
	s.Require().NoError(svc.Enroll(s.ctx(), tourist))

	_, err = svc.SOS(s.ctx(), tourist)
	s.Require().NoError(err)

	list, err := s.alerts.ListByTourist(context.Background(), tourist)
	s.Require().NoError(err)
	s.Len(list, 1)
}
