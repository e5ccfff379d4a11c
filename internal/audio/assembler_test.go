package audio

import (
	"testing"
)

func TestFrameAssembler_ExtractExactFrames(t *testing.T) {
	a := NewFrameAssembler(4)
	a.Append([]float32{1, 2, 3, 4, 5, 6})

	frame := make([]float32, 4)
	if !a.ExtractFrame(frame) {
		t.Fatal("Expected a full frame to be available")
	}
	for i, want := range []float32{1, 2, 3, 4} {
		if frame[i] != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, frame[i])
		}
	}

	if a.ExtractFrame(frame) {
		t.Error("Expected no frame with only 2 samples buffered")
	}
	if a.Pending() != 2 {
		t.Errorf("Expected 2 pending samples, got %d", a.Pending())
	}
}

// Chunking is associative: however N samples are split across Append calls,
// exactly N/F frames come out and N%F samples remain.
func TestFrameAssembler_ChunkingAssociativity(t *testing.T) {
	const frameSize = 7
	const total = 100

	splits := [][]int{
		{100},
		{1, 99},
		{13, 13, 13, 13, 13, 13, 13, 9},
		{50, 25, 12, 6, 3, 2, 1, 1},
	}

	for _, split := range splits {
		a := NewFrameAssembler(frameSize)
		next := float32(0)
		for _, n := range split {
			chunk := make([]float32, n)
			for i := range chunk {
				chunk[i] = next
				next++
			}
			a.Append(chunk)
		}

		frame := make([]float32, frameSize)
		extracted := 0
		expect := float32(0)
		for a.ExtractFrame(frame) {
			for i := range frame {
				if frame[i] != expect {
					t.Fatalf("Split %v: frame %d sample %d: expected %v, got %v", split, extracted, i, expect, frame[i])
				}
				expect++
			}
			extracted++
		}

		if extracted != total/frameSize {
			t.Errorf("Split %v: expected %d frames, got %d", split, total/frameSize, extracted)
		}
		if a.Pending() != total%frameSize {
			t.Errorf("Split %v: expected %d remaining, got %d", split, total%frameSize, a.Pending())
		}
	}
}

func TestPadFrame(t *testing.T) {
	dst := []float32{9, 9, 9, 9}
	PadFrame(dst, []float32{1, 2})

	for i, want := range []float32{1, 2, 0, 0} {
		if dst[i] != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, dst[i])
		}
	}

	// Longer chunks are truncated.
	PadFrame(dst, []float32{5, 6, 7, 8, 9, 10})
	for i, want := range []float32{5, 6, 7, 8} {
		if dst[i] != want {
			t.Errorf("Sample %d after truncate: expected %v, got %v", i, want, dst[i])
		}
	}
}

func TestOutputAssembler_FillAndTrim(t *testing.T) {
	o := NewOutputAssembler(4)
	o.Append([]float32{1, 2, 3, 4})
	o.Append([]float32{5, 6})

	dst := make([]float32, 3)
	if n := o.Fill(dst); n != 3 {
		t.Fatalf("Expected 3 samples, got %d", n)
	}
	for i, want := range []float32{1, 2, 3} {
		if dst[i] != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, dst[i])
		}
	}
	if o.Buffered() != 3 {
		t.Errorf("Expected 3 buffered, got %d", o.Buffered())
	}
}

func TestOutputAssembler_Underrun(t *testing.T) {
	o := NewOutputAssembler(4)
	o.Append([]float32{1, 2})

	// Request more than is buffered: only the prefix is written, the tail is
	// left untouched, and the queue is fully consumed.
	dst := []float32{-1, -1, -1, -1, -1}
	n := o.Fill(dst)
	if n != 2 {
		t.Fatalf("Expected 2 samples on underrun, got %d", n)
	}
	for i, want := range []float32{1, 2, -1, -1, -1} {
		if dst[i] != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, dst[i])
		}
	}
	if o.Buffered() != 0 {
		t.Errorf("Expected empty queue after underrun, got %d", o.Buffered())
	}
}

func TestOutputAssembler_EmptyIsNoOp(t *testing.T) {
	o := NewOutputAssembler(4)
	dst := []float32{7, 7}
	if n := o.Fill(dst); n != 0 {
		t.Errorf("Expected 0 from empty queue, got %d", n)
	}
	if dst[0] != 7 || dst[1] != 7 {
		t.Error("Fill on empty queue must not touch the destination")
	}
}
