package audio

import (
	"math"
	"testing"
)

func TestScale_RoundTrip(t *testing.T) {
	src := []float32{-1.0, -0.5, -0.001, 0, 0.001, 0.5, 1.0}
	scaled := make([]float32, len(src))
	back := make([]float32, len(src))

	ToEngineDomain(scaled, src)
	FromEngineDomain(back, scaled)

	for i := range src {
		if math.Abs(float64(back[i]-src[i])) > 1e-6 {
			t.Errorf("Sample %d: round trip %v -> %v", i, src[i], back[i])
		}
	}
}

func TestToEngineDomain_Magnitude(t *testing.T) {
	scaled := make([]float32, 1)
	ToEngineDomain(scaled, []float32{0.5})
	if scaled[0] != 16384 {
		t.Errorf("Expected 16384, got %v", scaled[0])
	}
}

func TestFromEngineDomain_Clamps(t *testing.T) {
	// Engine output beyond the nominal 16-bit range must clamp to [-1, 1].
	out := make([]float32, 2)
	FromEngineDomain(out, []float32{40000, -40000})

	if out[0] != 1.0 {
		t.Errorf("Expected clamp to 1.0, got %v", out[0])
	}
	if out[1] != -1.0 {
		t.Errorf("Expected clamp to -1.0, got %v", out[1])
	}
}
