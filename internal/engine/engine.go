// Package engine bridges the streaming core to the foreign noise-suppression
// engine: loading its binary, owning its handle and scratch memory, and
// wrapping per-frame processing so that engine failures never reach the
// real-time render path.
package engine

import "fmt"

// Engine is one instantiated noise-suppression engine. Implementations own
// the underlying handle and scratch regions exclusively; callers interact
// only through whole frames in the engine's numeric domain.
type Engine interface {
	// FrameSize returns the fixed number of samples the engine consumes and
	// produces per ProcessFrame call.
	FrameSize() int

	// ProcessFrame denoises exactly one frame from src into dst and returns
	// the engine's voice-activity score for the frame. Both slices must be
	// FrameSize long.
	ProcessFrame(dst, src []float32) (float64, error)

	// Close releases the engine handle and its scratch regions. Safe to call
	// more than once.
	Close() error
}

// InitError reports a failure to load or instantiate the engine binary:
// instantiation errors, missing entry points, or a failing constructor hook.
// It is fatal to activation only; the caller falls back to passthrough.
type InitError struct {
	Reason string
	Err    error
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine init: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("engine init: %s", e.Reason)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
