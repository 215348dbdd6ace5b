package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline-level metrics. Registered on the default registry and exposed
// through the server's /metrics endpoint.
var (
	PipelineRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcript_pipeline_requests_total",
		Help: "Transcript acquisition requests by final source and status.",
	}, []string{"source", "status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transcript_stage_duration_seconds",
		Help:    "Time spent per acquisition stage.",
		Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 900},
	}, []string{"stage"})

	DiarizationDegradations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcript_diarization_degradations_total",
		Help: "Requests where diarization failed and the transcript shipped unlabeled.",
	})

	TranscriberQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcript_transcriber_queue_depth",
		Help: "Requests currently waiting for or holding a transcription worker slot.",
	})
)
