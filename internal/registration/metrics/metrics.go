package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	StepAdvances       *prometheus.CounterVec
	OTPEvents          *prometheus.CounterVec
	UploadsRejected    *prometheus.CounterVec
	RegistrationsTotal prometheus.Counter
	OperationLatency   *prometheus.HistogramVec
}

// New registers the registration metrics with the default registry. Call it
// once per process.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "touristid_registration_sessions_started_total",
			Help: "Registration wizard sessions opened",
		}),
		StepAdvances: f.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_registration_step_advances_total",
			Help: "Successful wizard advances by the step reached",
		}, []string{"step"}),
		OTPEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_registration_otp_total",
			Help: "OTP requests, resends and verifications",
		}, []string{"action"}), // action: "request", "resend", "verify"
		UploadsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_registration_uploads_rejected_total",
			Help: "Document uploads refused by slot policy or size",
		}, []string{"slot"}),
		RegistrationsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "touristid_registrations_submitted_total",
			Help: "Registrations submitted and issued a Tourist ID",
		}),
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "touristid_registration_operation_duration_seconds",
			Help:    "Duration of registration service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncSessionsStarted() {
	if m != nil {
		m.SessionsStarted.Inc()
	}
}

func (m *Metrics) IncStepAdvance(step string) {
	if m != nil {
		m.StepAdvances.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) IncOTP(action string) {
	if m != nil {
		m.OTPEvents.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IncUploadRejected(slot string) {
	if m != nil {
		m.UploadsRejected.WithLabelValues(slot).Inc()
	}
}

func (m *Metrics) IncRegistrations() {
	if m != nil {
		m.RegistrationsTotal.Inc()
	}
}

func (m *Metrics) ObserveOperation(op string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}
