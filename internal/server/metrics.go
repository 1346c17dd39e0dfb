package server

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "lagcomp/internal/server"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics are recorded against the global meter provider, which is a no-op
// unless the process installs one.
type Metrics struct {
	ticks         metric.Int64Counter
	shots         metric.Int64Counter
	historyMisses metric.Int64Counter
	sendDropped   metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	m := meter()
	var (
		mt  Metrics
		err error
	)
	if mt.ticks, err = m.Int64Counter("lagcomp.server.ticks",
		metric.WithDescription("Simulation ticks executed")); err != nil {
		return nil, err
	}
	if mt.shots, err = m.Int64Counter("lagcomp.server.shots",
		metric.WithDescription("Shots resolved, by outcome")); err != nil {
		return nil, err
	}
	if mt.historyMisses, err = m.Int64Counter("lagcomp.server.history_misses",
		metric.WithDescription("Shots referencing an evicted tick")); err != nil {
		return nil, err
	}
	if mt.sendDropped, err = m.Int64Counter("lagcomp.server.send_dropped",
		metric.WithDescription("Outbound packets dropped on a full send queue")); err != nil {
		return nil, err
	}
	return &mt, nil
}

func (m *Metrics) recordStep(res StepResult) {
	if m == nil {
		return
	}
	ctx := context.Background()
	m.ticks.Add(ctx, 1)
	for _, shot := range res.Shots {
		outcome := "miss"
		if shot.Hit {
			outcome = "hit"
		}
		m.shots.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if n := len(res.Failures); n > 0 {
		m.historyMisses.Add(ctx, int64(n))
	}
}

func (m *Metrics) recordDropped() {
	if m == nil {
		return
	}
	m.sendDropped.Add(context.Background(), 1)
}
