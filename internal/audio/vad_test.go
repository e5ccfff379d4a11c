package audio

import (
	"testing"
)

func TestVadSmoother_VoiceNeverIncrementsCounter(t *testing.T) {
	v := NewVadSmoother(GateConfig{SilenceThreshold: 0.5, MaxSilenceFrames: 2})

	for i := 0; i < 20; i++ {
		v.Update(0.9)
		if v.SilenceRun() != 0 {
			t.Fatalf("Frame %d: counter %d, expected 0 while above threshold", i, v.SilenceRun())
		}
	}
}

func TestVadSmoother_SilenceIncrementsPerFrame(t *testing.T) {
	v := NewVadSmoother(GateConfig{SilenceThreshold: 0.5, MaxSilenceFrames: 2})

	for i := 1; i <= 10; i++ {
		v.Update(0.1)
		if v.SilenceRun() != i {
			t.Fatalf("Frame %d: counter %d, expected exactly one increment per frame", i, v.SilenceRun())
		}
	}
}

func TestVadSmoother_WindowAbsorbsSpike(t *testing.T) {
	v := NewVadSmoother(GateConfig{SilenceThreshold: 0.5, MaxSilenceFrames: 2})

	// Fill the window with strong voice, then feed a single quiet frame: the
	// smoothed mean stays above threshold and the counter must not move.
	for i := 0; i < 5; i++ {
		v.Update(1.0)
	}
	v.Update(0.0)
	if v.SilenceRun() != 0 {
		t.Errorf("Expected one quiet spike to be absorbed, counter = %d", v.SilenceRun())
	}
}

func TestVadSmoother_GateDropsAfterLimit(t *testing.T) {
	v := NewVadSmoother(GateConfig{SilenceThreshold: 0.5, MaxSilenceFrames: 2})

	// Five silent frames: counter runs 1..5, gate opens on counter > 2, so
	// frames 1-3 are kept and frames 4-5 dropped.
	wantDrop := []bool{false, false, false, true, true}
	for i, want := range wantDrop {
		v.Update(0.0)
		if got := v.ShouldDrop(); got != want {
			t.Errorf("Frame %d: ShouldDrop = %v, expected %v (counter %d)", i+1, got, want, v.SilenceRun())
		}
	}
}

func TestVadSmoother_VoiceReopensGate(t *testing.T) {
	v := NewVadSmoother(GateConfig{SilenceThreshold: 0.5, MaxSilenceFrames: 0})

	for i := 0; i < 8; i++ {
		v.Update(0.0)
	}
	if !v.ShouldDrop() {
		t.Fatal("Expected gate to be dropping after sustained silence")
	}

	// Strong voice pulls the window mean back above threshold and resets the
	// counter.
	for i := 0; i < 5; i++ {
		v.Update(1.0)
	}
	if v.ShouldDrop() {
		t.Error("Expected gate to reopen once voice resumes")
	}
}

func TestVadSmoother_SetConfigTakesEffect(t *testing.T) {
	v := NewVadSmoother(GateConfig{SilenceThreshold: 0.5, MaxSilenceFrames: 100})

	for i := 0; i < 10; i++ {
		v.Update(0.0)
	}
	if v.ShouldDrop() {
		t.Fatal("Counter 10 must not exceed limit 100")
	}

	cfg := v.Config()
	cfg.MaxSilenceFrames = 3
	v.SetConfig(cfg)

	if !v.ShouldDrop() {
		t.Error("Expected gate to drop once the limit is lowered below the counter")
	}
}
