package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Enrolled         prometheus.Counter
	Alerts           *prometheus.CounterVec
	DashboardsActive prometheus.Gauge
	SimulatorSteps   prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Enrolled: f.NewCounter(prometheus.CounterOpts{
			Name: "touristid_safety_enrolled_total",
			Help: "Tourists enrolled in the safety dashboard",
		}),
		Alerts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "touristid_safety_alerts_total",
			Help: "Alerts raised from safety dashboards",
		}, []string{"kind"}),
		DashboardsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "touristid_safety_dashboards_active",
			Help: "Dashboards updated by the last simulator step",
		}),
		SimulatorSteps: f.NewCounter(prometheus.CounterOpts{
			Name: "touristid_safety_simulator_steps_total",
			Help: "Simulator steps applied",
		}),
	}
}

func (m *Metrics) IncEnrolled() {
	if m != nil {
		m.Enrolled.Inc()
	}
}

func (m *Metrics) IncAlert(kind string) {
	if m != nil {
		m.Alerts.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveStep(dashboards int) {
	if m != nil {
		m.SimulatorSteps.Inc()
		m.DashboardsActive.Set(float64(dashboards))
	}
}
