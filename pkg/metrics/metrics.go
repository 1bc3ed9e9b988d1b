// Package metrics exposes the fleet's health as Prometheus collectors,
// updated once per poll cycle from the published snapshot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetwatch/fleetwatch/pkg/engine"
)

var (
	DevicesOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetwatch",
		Name:      "devices_online",
		Help:      "Number of monitored devices currently online.",
	})
	DevicesMismatched = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetwatch",
		Name:      "devices_mismatched",
		Help:      "Number of online devices whose negotiated speed disagrees with the configured expectation.",
	})
	PortsWithErrors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetwatch",
		Name:      "ports_with_errors",
		Help:      "Number of switch ports currently flagged with link or counter issues.",
	})
	SwitchConnected = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fleetwatch",
		Name:      "switch_connected",
		Help:      "Whether a configured switch was reachable on the last poll cycle (1) or not (0).",
	}, []string{"switch"})
	PollDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fleetwatch",
		Name:      "poll_duration_seconds",
		Help:      "Duration of a complete poll cycle across all switches.",
		Buckets:   prometheus.DefBuckets,
	})
	PollErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetwatch",
		Name:      "poll_errors_total",
		Help:      "Count of switch connect/query failures, by switch.",
	}, []string{"switch"})
)

func init() {
	prometheus.MustRegister(
		DevicesOnline,
		DevicesMismatched,
		PortsWithErrors,
		SwitchConnected,
		PollDuration,
		PollErrorsTotal,
	)
}

// SwitchHealth is the minimal per-switch shape Update needs; kept local so
// this package doesn't need to import pkg/snapshot just for a two-field
// projection.
type SwitchHealth struct {
	Name      string
	Connected bool
}

// Update refreshes the gauges from a freshly aggregated system status. Poll
// duration and per-switch error counters are recorded separately by the
// caller, since they aren't derivable from the snapshot alone.
func Update(status engine.SystemStatus, switches []SwitchHealth) {
	DevicesOnline.Set(float64(status.OnlineDevices))
	DevicesMismatched.Set(float64(status.MismatchedSpeeds))
	PortsWithErrors.Set(float64(status.PortsWithErrors))

	for _, s := range switches {
		v := 0.0
		if s.Connected {
			v = 1.0
		}
		SwitchConnected.WithLabelValues(s.Name).Set(v)
	}
}
