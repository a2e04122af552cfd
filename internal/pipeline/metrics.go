package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	callRecommend  = "recommend"
	callLocate     = "locate"
	callVisualize  = "visualize"
	callTranscribe = "transcribe"

	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

var (
	modelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hazardlens_model_calls_total",
			Help: "Model calls by call type and outcome",
		},
		[]string{"call", "outcome"},
	)

	artifactsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hazardlens_artifacts_total",
			Help: "Archive artifacts produced by kind",
		},
		[]string{"kind"},
	)

	pipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hazardlens_pipeline_duration_seconds",
			Help:    "End-to-end duration of an analyze run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"outcome"},
	)
)
