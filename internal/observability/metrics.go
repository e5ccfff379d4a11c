package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stream metrics
	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "denoise_gateway_active_streams",
		Help: "Number of active audio streams",
	})

	totalStreams = promauto.NewCounter(prometheus.CounterOpts{
		Name: "denoise_gateway_streams_total",
		Help: "Total number of audio streams handled",
	})

	// Frame metrics
	framesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "denoise_gateway_frames_processed_total",
		Help: "Frames denoised and delivered to the output queue",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "denoise_gateway_frames_dropped_total",
		Help: "Frames discarded by the silence gate",
	})

	passthroughQuanta = promauto.NewCounter(prometheus.CounterOpts{
		Name: "denoise_gateway_passthrough_quanta_total",
		Help: "Render quanta served in passthrough mode",
	})

	// Engine metrics
	engineInits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "denoise_gateway_engine_inits_total",
		Help: "Engine initialization attempts",
	}, []string{"status"})

	// Render metrics
	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "denoise_gateway_render_duration_seconds",
		Help:    "Duration of one render callback",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
	})

	// Audio volume
	audioSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "denoise_gateway_audio_samples_total",
		Help: "Audio samples moved through the stage",
	}, []string{"direction"}) // direction: "in" or "out"
)

// RecordStreamStart records a new audio stream.
func RecordStreamStart() {
	activeStreams.Inc()
	totalStreams.Inc()
}

// RecordStreamEnd records a finished audio stream.
func RecordStreamEnd() {
	activeStreams.Dec()
}

// RecordFrameProcessed records one denoised frame kept by the gate.
func RecordFrameProcessed() {
	framesProcessed.Inc()
}

// RecordFrameDropped records one frame discarded by the silence gate.
func RecordFrameDropped() {
	framesDropped.Inc()
}

// RecordPassthroughQuantum records one quantum served without the engine.
func RecordPassthroughQuantum() {
	passthroughQuanta.Inc()
}

// RecordEngineInit records the outcome of an engine initialization attempt.
func RecordEngineInit(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	engineInits.WithLabelValues(status).Inc()
}

// ObserveRenderDuration records the duration of one render callback.
func ObserveRenderDuration(d time.Duration) {
	renderDuration.Observe(d.Seconds())
}

// RecordAudioSamples records samples moved through the stage.
func RecordAudioSamples(direction string, samples int) {
	audioSamples.WithLabelValues(direction).Add(float64(samples))
}
