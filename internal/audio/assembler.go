package audio

// FrameAssembler accumulates merged mono samples delivered in arbitrary-sized
// quanta and slices out complete fixed-size frames for the engine. It is a
// growable queue rather than a fixed ring: quantum sizes are not known ahead
// of time and samples must never be dropped on overflow.
//
// Not safe for concurrent use. All buffer work happens on the single render
// goroutine.
type FrameAssembler struct {
	queue []float32
}

// NewFrameAssembler creates an assembler with capacity for a few frames of
// the given size, avoiding growth in the steady state.
func NewFrameAssembler(frameSize int) *FrameAssembler {
	if frameSize <= 0 {
		frameSize = 256
	}
	return &FrameAssembler{
		queue: make([]float32, 0, frameSize*4),
	}
}

// Append concatenates samples to the tail of the queue.
func (a *FrameAssembler) Append(samples []float32) {
	a.queue = append(a.queue, samples...)
}

// ExtractFrame pops exactly len(dst) leading samples into dst and reports
// whether a full frame was available. When fewer samples are buffered the
// queue is left untouched and dst is not written.
func (a *FrameAssembler) ExtractFrame(dst []float32) bool {
	n := len(dst)
	if len(a.queue) < n {
		return false
	}
	copy(dst, a.queue[:n])
	a.trim(n)
	return true
}

// Pending returns the number of buffered samples awaiting frame assembly.
func (a *FrameAssembler) Pending() int {
	return len(a.queue)
}

// Reset discards all buffered samples.
func (a *FrameAssembler) Reset() {
	a.queue = a.queue[:0]
}

// trim removes the consumed prefix. Samples are shifted down in place so the
// queue's backing array is reused instead of reallocated each frame.
func (a *FrameAssembler) trim(n int) {
	remaining := copy(a.queue, a.queue[n:])
	a.queue = a.queue[:remaining]
}

// PadFrame copies chunk into dst, zero-filling the remainder when chunk is
// shorter and truncating when it is longer. Used on the degraded path where
// the engine is handed a chunk outside the frame-aligned draining loop; the
// queue itself is never involved.
func PadFrame(dst, chunk []float32) {
	n := copy(dst, chunk)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// OutputAssembler accumulates processed frames and serves them back out in
// whatever quantum size the destination asks for, trimming consumed samples
// from the front. Gated frames are simply never appended, so the queue can
// run dry during prolonged silence; Fill tolerates that (see underrun note).
//
// Not safe for concurrent use.
type OutputAssembler struct {
	queue []float32
}

// NewOutputAssembler creates an assembler pre-sized like NewFrameAssembler.
func NewOutputAssembler(frameSize int) *OutputAssembler {
	if frameSize <= 0 {
		frameSize = 256
	}
	return &OutputAssembler{
		queue: make([]float32, 0, frameSize*4),
	}
}

// Append concatenates a processed frame to the tail of the queue.
func (o *OutputAssembler) Append(frame []float32) {
	o.queue = append(o.queue, frame...)
}

// Fill copies up to len(dst) leading samples into dst, removes them from the
// queue, and returns the number copied. On underrun only the available prefix
// is written and the tail of dst is left untouched — callers pre-zero their
// destinations, so a short fill plays out as trailing silence.
func (o *OutputAssembler) Fill(dst []float32) int {
	if len(o.queue) == 0 || len(dst) == 0 {
		return 0
	}
	n := copy(dst, o.queue)
	remaining := copy(o.queue, o.queue[n:])
	o.queue = o.queue[:remaining]
	return n
}

// Buffered returns the number of samples awaiting delivery.
func (o *OutputAssembler) Buffered() int {
	return len(o.queue)
}

// Reset discards all buffered samples.
func (o *OutputAssembler) Reset() {
	o.queue = o.queue[:0]
}
