package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus counters for the transcription pipeline.
type Metrics struct {
	ChunksGenerated prometheus.Counter
	ChunkDuration   prometheus.Histogram

	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	CompressionFailures    prometheus.Counter

	PolishRequests  prometheus.Counter
	PolishFallbacks prometheus.Counter

	StoreMerges *prometheus.CounterVec
}

// New creates and registers pipeline metrics on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a private registry
// so repeated construction never double-registers.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChunksGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenotes_chunks_generated_total",
			Help: "Total number of audio chunks produced by the silence splitter",
		}),
		ChunkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicenotes_chunk_duration_seconds",
			Help:    "Duration of generated audio chunks",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9),
		}),
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenotes_transcription_requests_total",
			Help: "Total transcription calls issued to the speech-to-text collaborator",
		}),
		TranscriptionSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenotes_transcription_successes_total",
			Help: "Total transcription calls that returned text",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenotes_transcription_failures_total",
			Help: "Total transcription calls that failed and left a gap",
		}),
		CompressionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenotes_compression_failures_total",
			Help: "Total chunk re-encodes that failed or stayed over the size limit",
		}),
		PolishRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenotes_polish_requests_total",
			Help: "Total paragraphs sent to the rewriting collaborator",
		}),
		PolishFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicenotes_polish_fallbacks_total",
			Help: "Total polish calls that failed and degraded to the original text",
		}),
		StoreMerges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicenotes_store_merges_total",
			Help: "Total log file merges by destination kind",
		}, []string{"kind"}),
	}
}
