package postprocess

import (
	"mobileforms-service/internal/app/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	passResultCompleted = "completed"
	passResultBusy      = "busy"
	passResultFailed    = "failed"
)

// Metrics counts passes and per-document outcomes.
type Metrics struct {
	Passes       *prometheus.CounterVec
	Documents    *prometheus.CounterVec
	PassDuration prometheus.Histogram
	Pending      prometheus.Gauge
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	metrics := &Metrics{
		Passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mobileforms",
			Subsystem: "postprocess",
			Name:      "passes_total",
			Help:      "Post-process pass invocations by result.",
		}, []string{"result"}),
		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mobileforms",
			Subsystem: "postprocess",
			Name:      "documents_total",
			Help:      "Pending documents handled by outcome.",
		}, []string{"outcome"}),
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mobileforms",
			Subsystem: "postprocess",
			Name:      "pass_duration_seconds",
			Help:      "Duration of completed post-process passes.",
			Buckets:   prometheus.DefBuckets,
		}),
		Pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mobileforms",
			Subsystem: "postprocess",
			Name:      "pending_documents",
			Help:      "Documents found in the pending area by the last pass.",
		}),
	}

	// expose every outcome at zero from the start
	for _, outcome := range models.PostProcessOutcomes {
		metrics.Documents.WithLabelValues(string(outcome))
	}
	return metrics
}
