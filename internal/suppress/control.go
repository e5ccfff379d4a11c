// Package suppress implements the streaming noise-suppression stage: the
// processor lifecycle state machine, its per-callback render pipeline and the
// asynchronous control-message intake that configures it.
package suppress

// CommandType tags a control message. Unknown tags are ignored by the intake.
type CommandType int

const (
	// CmdInit carries the engine binary and requests activation.
	CmdInit CommandType = iota
	// CmdDestroy requests terminal teardown of the stage.
	CmdDestroy
	// CmdSetParameter updates one gate tuning parameter.
	CmdSetParameter
)

// Parameter names accepted by CmdSetParameter.
const (
	ParamSilenceThreshold = "silenceThreshold"
	ParamMaxSilenceFrames = "maxSilenceFrames"
)

// Command is one tagged control message. Commands arrive from outside the
// render callback and are applied by the intake at the start of the next
// Render call; senders never rendezvous with the render goroutine.
type Command struct {
	Type CommandType

	// Binary is the engine module blob (CmdInit only).
	Binary []byte

	// Name and Value carry a parameter update (CmdSetParameter only).
	Name  string
	Value float64
}
