package audio

import (
	"math"
	"testing"
)

func TestDownmixMono_Average(t *testing.T) {
	channels := [][]float32{
		{0.2, 0.4, -0.6},
		{0.4, 0.0, -0.2},
	}

	mono := DownmixMono(channels)
	want := []float32{0.3, 0.2, -0.4}

	if len(mono) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(mono))
	}
	for i := range want {
		if math.Abs(float64(mono[i]-want[i])) > 1e-6 {
			t.Errorf("Sample %d: expected %v, got %v", i, want[i], mono[i])
		}
	}
}

func TestDownmixMono_SkipsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	channels := [][]float32{
		{0.5, nan, nan},
		{nan, 0.3, inf},
	}

	mono := DownmixMono(channels)

	// Index 0 and 1 each have exactly one finite contributor.
	if mono[0] != 0.5 {
		t.Errorf("Expected 0.5 at index 0, got %v", mono[0])
	}
	if mono[1] != 0.3 {
		t.Errorf("Expected 0.3 at index 1, got %v", mono[1])
	}
	// Index 2 has no finite contributor and must yield 0, not NaN.
	if mono[2] != 0 {
		t.Errorf("Expected 0 for all-non-finite column, got %v", mono[2])
	}
}

func TestDownmixMono_SingleChannelCopies(t *testing.T) {
	src := []float32{0.1, 0.2, 0.3}
	mono := DownmixMono([][]float32{src})

	if &mono[0] == &src[0] {
		t.Error("Single-channel downmix must copy, not alias host storage")
	}
	for i := range src {
		if mono[i] != src[i] {
			t.Errorf("Sample %d: expected %v, got %v", i, src[i], mono[i])
		}
	}
}

func TestDownmixMono_NoChannels(t *testing.T) {
	if mono := DownmixMono(nil); len(mono) != 0 {
		t.Errorf("Expected empty output for zero channels, got %d samples", len(mono))
	}
}
