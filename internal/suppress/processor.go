package suppress

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/soniqlabs/denoise-gateway/internal/audio"
	"github.com/soniqlabs/denoise-gateway/internal/engine"
	"github.com/soniqlabs/denoise-gateway/internal/observability"
)

// State is the processor lifecycle state.
type State int

const (
	// StateUninitialized renders passthrough until an Init succeeds.
	StateUninitialized State = iota
	// StateReady renders the full suppression pipeline.
	StateReady
	// StateDestroyed is terminal; Render reports false to the host.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Loader instantiates an engine from its binary blob. Replaceable so tests
// can run the lifecycle against a stub engine.
type Loader func(ctx context.Context, binary []byte) (engine.Engine, error)

type initOutcome struct {
	eng engine.Engine
	err error
}

// Processor is the top-level streaming stage. The host drives it through two
// surfaces: Send, which enqueues control messages from any goroutine, and
// Render, which the host's render loop calls once per quantum on a single
// goroutine. All buffer and engine work happens inside Render; Send never
// blocks and never touches processor state directly.
type Processor struct {
	logger  zerolog.Logger
	adapter *engine.Adapter
	loader  Loader

	commands   chan Command
	initResult chan initOutcome

	// destroyed is the only state shared with the init goroutine; it closes
	// the window where an engine finishes loading after a destroy signal.
	destroyed atomic.Bool

	state        State
	initInFlight bool

	input  *audio.FrameAssembler
	output *audio.OutputAssembler
	vad    *audio.VadSmoother

	// Render-loop staging, sized once per engine install.
	frame    []float32
	denoised []float32
	quantum  []float32
}

// New creates a processor in the uninitialized (passthrough) state.
// commandQueueSize bounds the control intake; senders drop on overflow
// rather than block.
func New(logger zerolog.Logger, gate audio.GateConfig, commandQueueSize int) *Processor {
	if commandQueueSize <= 0 {
		commandQueueSize = 16
	}
	logger = logger.With().Str("component", "processor").Logger()
	return &Processor{
		logger:     logger,
		adapter:    engine.NewAdapter(logger),
		loader:     engine.Load,
		commands:   make(chan Command, commandQueueSize),
		initResult: make(chan initOutcome, 1),
		input:      audio.NewFrameAssembler(0),
		output:     audio.NewOutputAssembler(0),
		vad:        audio.NewVadSmoother(gate),
	}
}

// State returns the current lifecycle state as last observed by Render.
func (p *Processor) State() State {
	return p.state
}

// Send enqueues a control message for the next Render call. Non-blocking:
// when the queue is full the message is dropped with a warning, which only
// happens if the host stops rendering.
func (p *Processor) Send(cmd Command) {
	select {
	case p.commands <- cmd:
	default:
		p.logger.Warn().Int("type", int(cmd.Type)).Msg("Control queue full, dropping command")
	}
}

// Render processes one callback: drains pending control messages, settles a
// finished initialization if any, then runs passthrough or the suppression
// pipeline depending on state. inputs and outputs are ordered collections of
// sources/destinations, each holding per-channel sample slices of the
// quantum length. Returns false once the stage is destroyed and should no
// longer be invoked.
func (p *Processor) Render(inputs, outputs [][][]float32) bool {
	start := time.Now()
	defer func() {
		observability.ObserveRenderDuration(time.Since(start))
	}()

	p.intake()
	if p.state == StateDestroyed {
		return false
	}
	p.settleInit()

	if p.state != StateReady || !p.adapter.Ready() {
		p.renderPassthrough(inputs, outputs)
		return true
	}

	if len(inputs) > 0 {
		p.input.Append(audio.DownmixMono(inputs[0]))
	}

	for p.input.ExtractFrame(p.frame) {
		vad := p.adapter.ProcessFrame(p.denoised, p.frame)
		p.vad.Update(vad)
		if p.vad.ShouldDrop() {
			observability.RecordFrameDropped()
			continue
		}
		p.output.Append(p.denoised)
		observability.RecordFrameProcessed()
	}

	p.deliver(outputs)
	return true
}

// intake applies every queued control message without blocking.
func (p *Processor) intake() {
	for {
		select {
		case cmd := <-p.commands:
			p.apply(cmd)
		default:
			return
		}
	}
}

func (p *Processor) apply(cmd Command) {
	switch cmd.Type {
	case CmdInit:
		p.applyInit(cmd.Binary)
	case CmdDestroy:
		p.applyDestroy()
	case CmdSetParameter:
		p.applyParameter(cmd.Name, cmd.Value)
	default:
		p.logger.Warn().Int("type", int(cmd.Type)).Msg("Ignoring unknown control message")
	}
}

// applyInit kicks off engine loading on its own goroutine; loading is the
// only long-running operation and must stay off the render path. The result
// lands in initResult and is observed by a later Render call.
func (p *Processor) applyInit(binary []byte) {
	if p.state == StateDestroyed {
		p.logger.Warn().Msg("Ignoring init after destroy")
		return
	}
	if p.initInFlight || p.state == StateReady {
		p.logger.Warn().Msg("Ignoring init, engine already initializing or ready")
		return
	}

	p.initInFlight = true
	p.logger.Info().Int("binary_bytes", len(binary)).Msg("Engine initialization started")

	go func() {
		eng, err := p.loader(context.Background(), binary)
		p.initResult <- initOutcome{eng: eng, err: err}
		// A destroy may have landed while loading. The buffered send above
		// always completes, so whichever side observes both the flag and the
		// outcome releases the engine.
		if p.destroyed.Load() {
			p.drainInitResult()
		}
	}()
}

func (p *Processor) applyDestroy() {
	if p.state == StateDestroyed {
		return
	}
	p.destroyed.Store(true)
	p.state = StateDestroyed
	p.adapter.Teardown()
	p.drainInitResult()
	p.input.Reset()
	p.output.Reset()
	p.vad.Reset()
	p.logger.Info().Msg("Processor destroyed")
}

func (p *Processor) applyParameter(name string, value float64) {
	cfg := p.vad.Config()
	switch name {
	case ParamSilenceThreshold:
		if value < 0 {
			value = 0
		} else if value > 1 {
			value = 1
		}
		cfg.SilenceThreshold = value
	case ParamMaxSilenceFrames:
		if value < 0 {
			value = 0
		}
		cfg.MaxSilenceFrames = int(value)
	default:
		p.logger.Warn().Str("name", name).Msg("Ignoring unknown parameter")
		return
	}
	p.vad.SetConfig(cfg)
	p.logger.Debug().Str("name", name).Float64("value", value).Msg("Parameter updated")
}

// settleInit observes a finished initialization, if any, without blocking.
func (p *Processor) settleInit() {
	if !p.initInFlight {
		return
	}
	select {
	case out := <-p.initResult:
		p.initInFlight = false
		if out.err != nil {
			observability.RecordEngineInit(false)
			p.logger.Error().Err(out.err).Msg("Engine initialization failed, staying in passthrough")
			return
		}
		p.adapter.Install(out.eng)
		size := p.adapter.FrameSize()
		p.input = audio.NewFrameAssembler(size)
		p.output = audio.NewOutputAssembler(size)
		p.frame = make([]float32, size)
		p.denoised = make([]float32, size)
		p.state = StateReady
		observability.RecordEngineInit(true)
		p.logger.Info().Int("frame_size", size).Msg("Processor ready")
	default:
	}
}

// drainInitResult releases an engine whose load settled after destroy. Safe
// to call from both the render goroutine and the init goroutine: the channel
// receive is atomic, so exactly one side gets the outcome.
func (p *Processor) drainInitResult() {
	select {
	case out := <-p.initResult:
		if out.eng != nil {
			_ = out.eng.Close()
			p.logger.Info().Msg("Engine released after destroy during initialization")
		}
	default:
	}
}

// renderPassthrough broadcasts the first available input channel into every
// destination channel, truncating or zero-extending on length mismatch, and
// emits silence when no input is present.
func (p *Processor) renderPassthrough(inputs, outputs [][][]float32) {
	var src []float32
	for _, in := range inputs {
		if len(in) > 0 {
			src = in[0]
			break
		}
	}
	for _, dst := range outputs {
		for _, ch := range dst {
			n := copy(ch, src)
			for i := n; i < len(ch); i++ {
				ch[i] = 0
			}
		}
	}
	observability.RecordPassthroughQuantum()
}

// deliver serves one quantum from the output queue, broadcast identically
// into every destination channel. The staging buffer is zeroed first so an
// underrun plays out as trailing silence.
func (p *Processor) deliver(outputs [][][]float32) {
	quantum := 0
	for _, dst := range outputs {
		for _, ch := range dst {
			if quantum == 0 || len(ch) < quantum {
				quantum = len(ch)
			}
		}
	}
	if quantum == 0 {
		return
	}

	if cap(p.quantum) < quantum {
		p.quantum = make([]float32, quantum)
	}
	staging := p.quantum[:quantum]
	for i := range staging {
		staging[i] = 0
	}
	p.output.Fill(staging)

	for _, dst := range outputs {
		for _, ch := range dst {
			copy(ch, staging)
		}
	}
}
