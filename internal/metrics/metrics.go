// Package metrics holds the Prometheus collectors of the assistant pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "mediconnect"
	subsystem = "assistant"
)

var (
	// StreamsTotal counts finished relay runs by result (completed, failed, disconnected)
	StreamsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "streams_total",
		Help:      "Assistant response streams by final result.",
	}, []string{"result"})

	FragmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "fragments_forwarded_total",
		Help:      "Non-empty token fragments forwarded to callers.",
	})

	PingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "liveness_pings_total",
		Help:      "Liveness markers written on open streams.",
	})

	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_streams",
		Help:      "Streams currently open.",
	})

	// AugmentationsTotal counts augmentation attempts by result (applied, empty, failed, skipped)
	AugmentationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "augmentations_total",
		Help:      "Domain data augmentation attempts by result.",
	}, []string{"result"})

	// RejectedTotal counts requests refused before a stream opened
	RejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rejected_requests_total",
		Help:      "Requests refused before streaming, by reason.",
	}, []string{"reason"})
)
