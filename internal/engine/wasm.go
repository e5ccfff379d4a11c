package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Entry points the engine binary must export. The per-frame processor takes
// (handle, outPtr, inPtr) and returns an f32 voice-activity score; the
// allocator and deallocator manage the scratch regions inside the module's
// linear memory.
const (
	exportFrameSize    = "rnnoise_get_frame_size"
	exportCreate       = "rnnoise_create"
	exportDestroy      = "rnnoise_destroy"
	exportProcessFrame = "rnnoise_process_frame"
	exportAlloc        = "malloc"
	exportFree         = "free"

	// Optional post-load constructor hook (WASM reactor convention).
	exportInitialize = "_initialize"
)

const bytesPerSample = 4 // 32-bit float slots

// wasmEngine runs the suppression engine inside a wazero-hosted WebAssembly
// module. The two scratch regions live in the module's linear memory and are
// touched only for the duration of a single ProcessFrame call.
type wasmEngine struct {
	runtime wazero.Runtime
	module  api.Module

	process api.Function
	destroy api.Function
	free    api.Function

	handle    uint64
	inPtr     uint64
	outPtr    uint64
	frameSize int
	closed    bool
}

// Load instantiates the engine from its binary blob: validates the required
// entry points, runs the optional constructor hook, creates the suppression
// state, queries the frame size and allocates the input/output scratch
// regions. Any failure is reported as an *InitError and leaves nothing
// allocated.
func Load(ctx context.Context, binary []byte) (Engine, error) {
	if len(binary) == 0 {
		return nil, &InitError{Reason: "empty engine binary"}
	}

	runtime := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	// Start functions are disabled so the optional constructor hook runs
	// under our control, after export validation.
	mod, err := runtime.InstantiateWithConfig(ctx, binary,
		wazero.NewModuleConfig().WithName("suppression-engine").WithStartFunctions())
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, &InitError{Reason: "instantiation failed", Err: err}
	}

	required := []string{exportFrameSize, exportCreate, exportDestroy, exportProcessFrame, exportAlloc, exportFree}
	for _, name := range required {
		if mod.ExportedFunction(name) == nil {
			_ = runtime.Close(ctx)
			return nil, &InitError{Reason: fmt.Sprintf("missing entry point %q", name)}
		}
	}
	if mod.Memory() == nil {
		_ = runtime.Close(ctx)
		return nil, &InitError{Reason: "module exports no memory"}
	}

	if initHook := mod.ExportedFunction(exportInitialize); initHook != nil {
		if _, err := initHook.Call(ctx); err != nil {
			_ = runtime.Close(ctx)
			return nil, &InitError{Reason: "constructor hook failed", Err: err}
		}
	}

	e := &wasmEngine{
		runtime: runtime,
		module:  mod,
		process: mod.ExportedFunction(exportProcessFrame),
		destroy: mod.ExportedFunction(exportDestroy),
		free:    mod.ExportedFunction(exportFree),
	}

	res, err := mod.ExportedFunction(exportFrameSize).Call(ctx)
	if err != nil || len(res) == 0 {
		_ = runtime.Close(ctx)
		return nil, &InitError{Reason: "frame size query failed", Err: err}
	}
	e.frameSize = int(int32(res[0]))
	if e.frameSize <= 0 {
		_ = runtime.Close(ctx)
		return nil, &InitError{Reason: fmt.Sprintf("invalid frame size %d", e.frameSize)}
	}

	res, err = mod.ExportedFunction(exportCreate).Call(ctx, 0)
	if err != nil || len(res) == 0 || res[0] == 0 {
		_ = runtime.Close(ctx)
		return nil, &InitError{Reason: "create failed", Err: err}
	}
	e.handle = res[0]

	alloc := mod.ExportedFunction(exportAlloc)
	scratchBytes := uint64(e.frameSize * bytesPerSample)
	for _, ptr := range []*uint64{&e.inPtr, &e.outPtr} {
		res, err = alloc.Call(ctx, scratchBytes)
		if err != nil || len(res) == 0 || res[0] == 0 {
			e.releaseAll(ctx)
			return nil, &InitError{Reason: "scratch allocation failed", Err: err}
		}
		*ptr = res[0]
	}

	return e, nil
}

func (e *wasmEngine) FrameSize() int {
	return e.frameSize
}

// ProcessFrame writes src into the input scratch region, invokes the engine's
// per-frame call against the output region, and reads the result back into
// dst. The regions are not touched outside this call.
func (e *wasmEngine) ProcessFrame(dst, src []float32) (float64, error) {
	if e.closed {
		return 0, fmt.Errorf("engine is closed")
	}
	if len(src) != e.frameSize || len(dst) != e.frameSize {
		return 0, fmt.Errorf("frame length %d/%d, engine requires %d", len(src), len(dst), e.frameSize)
	}

	mem := e.module.Memory()
	for i, s := range src {
		if !mem.WriteFloat32Le(uint32(e.inPtr)+uint32(i*bytesPerSample), s) {
			return 0, fmt.Errorf("input scratch write out of range")
		}
	}

	res, err := e.process.Call(context.Background(), e.handle, e.outPtr, e.inPtr)
	if err != nil {
		return 0, fmt.Errorf("process frame trapped: %w", err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("process frame returned no value")
	}

	for i := range dst {
		v, ok := mem.ReadFloat32Le(uint32(e.outPtr) + uint32(i*bytesPerSample))
		if !ok {
			return 0, fmt.Errorf("output scratch read out of range")
		}
		dst[i] = v
	}

	return float64(api.DecodeF32(res[0])), nil
}

// Close destroys the suppression state, frees both scratch regions and shuts
// the runtime down. Exactly-once: repeated calls are no-ops.
func (e *wasmEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.releaseAll(context.Background())
	return nil
}

func (e *wasmEngine) releaseAll(ctx context.Context) {
	if e.handle != 0 {
		_, _ = e.destroy.Call(ctx, e.handle)
		e.handle = 0
	}
	for _, ptr := range []*uint64{&e.inPtr, &e.outPtr} {
		if *ptr != 0 {
			_, _ = e.free.Call(ctx, *ptr)
			*ptr = 0
		}
	}
	_ = e.runtime.Close(ctx)
}
