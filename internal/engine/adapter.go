package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/soniqlabs/denoise-gateway/internal/audio"
)

// Breaker tuning. After maxFailures consecutive per-frame failures the
// adapter stops calling the engine and passes frames through; after
// cooldownFrames passthrough frames it probes the engine again with a single
// frame. Counting frames instead of wall-clock time keeps the hot path free
// of clock reads.
const (
	breakerMaxFailures    = 5
	breakerCooldownFrames = 100
)

// Adapter owns the engine instance and shields the render path from it:
// ProcessFrame never fails, never panics outward, and degrades to copying
// input through whenever the engine is absent, misbehaving or tripped.
//
// Not safe for concurrent use; all calls happen on the render goroutine.
type Adapter struct {
	logger zerolog.Logger

	engine    Engine
	frameSize int

	// Staging buffers in the engine's numeric domain, reused across frames.
	scaledIn  []float32
	scaledOut []float32
	// Padding buffer for chunks arriving outside the frame-aligned loop.
	padded []float32

	failStreak int
	cooldown   int
}

// NewAdapter creates an adapter in the uninitialized (passthrough) state.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger.With().Str("component", "engine_adapter").Logger()}
}

// Install hands a freshly loaded engine to the adapter and sizes the staging
// buffers. Any previously installed engine is torn down first.
func (a *Adapter) Install(e Engine) {
	a.Teardown()

	size := e.FrameSize()
	a.engine = e
	a.frameSize = size
	a.scaledIn = make([]float32, size)
	a.scaledOut = make([]float32, size)
	a.padded = make([]float32, size)
	a.failStreak = 0
	a.cooldown = 0

	a.logger.Info().Int("frame_size", size).Msg("Suppression engine installed")
}

// Ready reports whether an engine is installed.
func (a *Adapter) Ready() bool {
	return a.engine != nil
}

// FrameSize returns the installed engine's frame size, or 0 when
// uninitialized.
func (a *Adapter) FrameSize() int {
	return a.frameSize
}

// ProcessFrame runs one frame through the engine and returns its
// voice-activity score. It never fails: with no engine installed, with the
// breaker open, or when the engine errors, the original samples are copied
// into dst and the score is 0. Mismatched input lengths are padded or
// truncated into a scratch frame first.
func (a *Adapter) ProcessFrame(dst, src []float32) float64 {
	if a.engine == nil {
		copy(dst, src)
		return 0
	}

	if a.cooldown > 0 {
		a.cooldown--
		copy(dst, src)
		return 0
	}

	frame := src
	if len(src) != a.frameSize {
		audio.PadFrame(a.padded, src)
		frame = a.padded
	}

	vad, err := a.callEngine(frame)
	if err != nil {
		a.failStreak++
		a.logger.Warn().Err(err).Int("streak", a.failStreak).Msg("Engine frame processing failed")
		if a.failStreak >= breakerMaxFailures {
			a.cooldown = breakerCooldownFrames
			a.failStreak = 0
			a.logger.Error().Int("cooldown_frames", breakerCooldownFrames).Msg("Engine breaker tripped, passing audio through")
		}
		copy(dst, src)
		return 0
	}
	a.failStreak = 0

	n := min(len(dst), a.frameSize)
	audio.FromEngineDomain(dst[:n], a.scaledOut[:n])
	return vad
}

// callEngine performs the scale-in / process / scale-out round trip. A panic
// inside the engine implementation is recovered and surfaced as an error so
// the render callback can never abort on engine failure.
func (a *Adapter) callEngine(frame []float32) (vad float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			vad = 0
			err = &panicError{value: r}
		}
	}()

	audio.ToEngineDomain(a.scaledIn, frame)
	return a.engine.ProcessFrame(a.scaledOut, a.scaledIn)
}

// Teardown releases the engine exactly once. Idempotent: repeated destroy
// signals are expected during shutdown.
func (a *Adapter) Teardown() {
	if a.engine == nil {
		return
	}
	if err := a.engine.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Engine close reported an error")
	}
	a.engine = nil
	a.frameSize = 0
	a.scaledIn = nil
	a.scaledOut = nil
	a.padded = nil
	a.logger.Info().Msg("Suppression engine released")
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("engine panicked: %v", p.value)
}
