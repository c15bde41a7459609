package service

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTickInterval matches the cadence of dashboard updates on the
// tourist app.
const DefaultTickInterval = 5 * time.Second

// Simulator drives Service.Simulate on a fixed interval until its context
// ends.
type Simulator struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewSimulator(service *Service, interval time.Duration, logger *slog.Logger) *Simulator {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{service: service, interval: interval, logger: logger}
}

// Run blocks until ctx is done. A failed step is logged and the next one
// still runs.
func (sim *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(sim.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if _, err := sim.service.Simulate(ctx, now); err != nil {
				sim.logger.WarnContext(ctx, "safety simulator step failed", "error", err)
			}
		}
	}
}
