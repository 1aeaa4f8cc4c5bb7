// Package telemetry provides Prometheus metrics for the relay.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay modes used as the "mode" label.
const (
	ModeLive   = "live"
	ModeReplay = "replay"
)

var (
	once sync.Once

	// RelayedMessages counts delivered messages per mode.
	RelayedMessages *prometheus.CounterVec
	// SkippedMessages counts failed messages per mode and stage.
	SkippedMessages *prometheus.CounterVec
	// ThreadsCreated counts forum threads created by the resolver.
	ThreadsCreated prometheus.Counter
	// ReplayDuration observes whole replay jobs.
	ReplayDuration prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		RelayedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "topicwala_relayed_messages_total",
			Help: "Messages delivered into a destination thread",
		}, []string{"mode"})
		SkippedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "topicwala_skipped_messages_total",
			Help: "Messages that failed to relay",
		}, []string{"mode", "stage"})
		ThreadsCreated = promauto.NewCounter(prometheus.CounterOpts{
			Name: "topicwala_threads_created_total",
			Help: "Forum threads created for new topic labels",
		})
		ReplayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "topicwala_replay_duration_seconds",
			Help:    "Duration of range replay jobs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		})
	})
}

// Relayed records a delivered message.
func Relayed(mode string) {
	Init()
	RelayedMessages.WithLabelValues(mode).Inc()
}

// Skipped records a failed message.
func Skipped(mode, stage string) {
	Init()
	SkippedMessages.WithLabelValues(mode, stage).Inc()
}

// ThreadCreated records a new forum thread.
func ThreadCreated() {
	Init()
	ThreadsCreated.Inc()
}

// ObserveReplay records a finished replay job.
func ObserveReplay(seconds float64) {
	Init()
	ReplayDuration.Observe(seconds)
}
