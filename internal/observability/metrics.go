package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	FramesProcessed  prometheus.Counter
	FrameFetchErrors prometheus.Counter
	FramesNotReady   prometheus.Counter
	ReadingsProduced prometheus.Counter
	PublishErrors    prometheus.Counter
	ArchiveErrors    prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Per-frame analysis metrics.
	StationsAnalyzed  *prometheus.CounterVec // labels: status={skipped,classified,unclassifiable,sample_failed}
	FrameFetchSeconds prometheus.Histogram
	FrameCycleSeconds prometheus.Histogram
	FrameLagSeconds   prometheus.Gauge

	// Frame cache metrics.
	FrameCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "frames_processed_total",
			Help:      "Total map frames fetched and analyzed.",
		}),
		FrameFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "frame_fetch_errors_total",
			Help:      "Total hard frame fetch failures.",
		}),
		FramesNotReady: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "frames_not_ready_total",
			Help:      "Fetch attempts answered before the monitor published the frame.",
		}),
		ReadingsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "readings_produced_total",
			Help:      "Total station readings written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "publish_errors_total",
			Help:      "Total sink publish failures.",
		}),
		ArchiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "archive_errors_total",
			Help:      "Total raw frame archive failures (non-fatal).",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		StationsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "stations_analyzed_total",
			Help:      "Analyzed stations by terminal status.",
		}, []string{"status"}),
		FrameFetchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_etl",
			Name:      "frame_fetch_duration_seconds",
			Help:      "Duration of one frame fetch from the monitor.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		FrameCycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_etl",
			Name:      "frame_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-analyze-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		FrameLagSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_etl",
			Name:      "frame_lag_seconds",
			Help:      "Age of the last processed frame at publish time.",
		}),
		FrameCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "frame_cache_total",
			Help:      "Frame cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.FramesProcessed,
		m.FrameFetchErrors,
		m.FramesNotReady,
		m.ReadingsProduced,
		m.PublishErrors,
		m.ArchiveErrors,
		m.PipelineRunning,
		m.StationsAnalyzed,
		m.FrameFetchSeconds,
		m.FrameCycleSeconds,
		m.FrameLagSeconds,
		m.FrameCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FramesProcessed:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "frames_processed_total"}),
		FrameFetchErrors:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "frame_fetch_errors_total"}),
		FramesNotReady:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "frames_not_ready_total"}),
		ReadingsProduced:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "readings_produced_total"}),
		PublishErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "publish_errors_total"}),
		ArchiveErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_etl", Name: "archive_errors_total"}),
		PipelineRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_etl", Name: "pipeline_running"}),
		StationsAnalyzed:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_etl", Name: "stations_analyzed_total"}, []string{"status"}),
		FrameFetchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_etl", Name: "frame_fetch_duration_seconds"}),
		FrameCycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_etl", Name: "frame_cycle_duration_seconds"}),
		FrameLagSeconds:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_etl", Name: "frame_lag_seconds"}),
		FrameCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_etl", Name: "frame_cache_total"}, []string{"result"}),
	}
}
