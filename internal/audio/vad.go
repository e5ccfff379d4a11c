package audio

// vadWindowSize is the number of recent VAD scores averaged before the gate
// decision. Fixed: the window exists to absorb single-frame spikes, not to be
// tuned.
const vadWindowSize = 5

// GateConfig holds the silence-gating tuning knobs. Both fields may be
// rewritten between frames by the control intake; they are read once per
// frame.
type GateConfig struct {
	// SilenceThreshold is the smoothed-VAD level below which a frame counts
	// as silence, in [0, 1].
	SilenceThreshold float64

	// MaxSilenceFrames is how many consecutive silent frames are still
	// delivered before the gate starts dropping.
	MaxSilenceFrames int
}

// DefaultGateConfig returns the gate tuning used when the host sets nothing.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		SilenceThreshold: 0.5,
		MaxSilenceFrames: 10,
	}
}

// VadSmoother keeps a sliding window of the engine's per-frame voice-activity
// scores and a hysteresis counter of consecutive frames whose smoothed score
// fell below the threshold. The smoothing keeps one noisy score from flipping
// the gate in either direction.
//
// Not safe for concurrent use.
type VadSmoother struct {
	window  [vadWindowSize]float64
	filled  int
	next    int
	silence int
	config  GateConfig
}

// NewVadSmoother creates a smoother with the given initial tuning.
func NewVadSmoother(config GateConfig) *VadSmoother {
	return &VadSmoother{config: config}
}

// Update records one VAD score, evicting the oldest once the window is full,
// and advances the silence counter: incremented when the window mean is below
// the threshold, reset to zero otherwise.
func (v *VadSmoother) Update(vad float64) {
	v.window[v.next] = vad
	v.next = (v.next + 1) % vadWindowSize
	if v.filled < vadWindowSize {
		v.filled++
	}

	var sum float64
	for i := 0; i < v.filled; i++ {
		sum += v.window[i]
	}
	mean := sum / float64(v.filled)

	if mean < v.config.SilenceThreshold {
		v.silence++
	} else {
		v.silence = 0
	}
}

// ShouldDrop reports whether the current frame should be discarded from
// output. The gate compares the silence run as it stood before this frame's
// increment, so with a limit of N the first N+1 silent frames are still
// delivered. Dropped frames are not replaced with silence; the output queue
// simply stops growing until voice resumes.
func (v *VadSmoother) ShouldDrop() bool {
	return v.silence > 0 && v.silence-1 > v.config.MaxSilenceFrames
}

// SilenceRun returns the current count of consecutive silent frames.
func (v *VadSmoother) SilenceRun() int {
	return v.silence
}

// SetConfig replaces the gate tuning. Takes effect on the next Update.
func (v *VadSmoother) SetConfig(config GateConfig) {
	v.config = config
}

// Config returns the current gate tuning.
func (v *VadSmoother) Config() GateConfig {
	return v.config
}

// Reset clears the window and the silence counter.
func (v *VadSmoother) Reset() {
	v.filled = 0
	v.next = 0
	v.silence = 0
}
