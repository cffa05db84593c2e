package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultDead    = "dead"
)

var (
	cascadeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ventures",
		Name:      "cascade_total",
		Help:      "Cascades run, by cascade and result.",
	}, []string{"cascade", "result"})

	cascadeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ventures",
		Name:      "cascade_duration_seconds",
		Help:      "Time from lock request to commit or rollback.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"cascade"})

	outboxPublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ventures",
		Name:      "outbox_publish_total",
		Help:      "Venture event publish attempts, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(cascadeTotal, cascadeDuration, outboxPublishTotal)
}

func observeCascade(cascade string, success bool, duration time.Duration) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	cascadeTotal.WithLabelValues(cascade, result).Inc()
	cascadeDuration.WithLabelValues(cascade).Observe(duration.Seconds())
}
