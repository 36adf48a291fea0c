package exchanger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hx_sizing_runs_total",
		Help: "Sizing runs by exchanger kind and result",
	}, []string{"kind", "result"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hx_sizing_duration_seconds",
		Help:    "Wall time of a sizing run, including property lookups",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"kind"})
)

func observeRun(kind string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	runsTotal.WithLabelValues(kind, result).Inc()
	runDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
