package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("SILENCE_THRESHOLD")
	os.Unsetenv("MAX_SILENCE_FRAMES")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}
	if cfg.SilenceThreshold != 0.5 {
		t.Errorf("Expected default SilenceThreshold 0.5, got %v", cfg.SilenceThreshold)
	}
	if cfg.MaxSilenceFrames != 10 {
		t.Errorf("Expected default MaxSilenceFrames 10, got %d", cfg.MaxSilenceFrames)
	}
	if cfg.ControlQueueSize != 16 {
		t.Errorf("Expected default ControlQueueSize 16, got %d", cfg.ControlQueueSize)
	}
	if !cfg.MetricsEnabled {
		t.Error("Expected metrics enabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("SILENCE_THRESHOLD", "0.8")
	os.Setenv("MAX_SILENCE_FRAMES", "3")
	os.Setenv("ENGINE_PATH", "/opt/engines/rnnoise.wasm")
	defer os.Unsetenv("SILENCE_THRESHOLD")
	defer os.Unsetenv("MAX_SILENCE_FRAMES")
	defer os.Unsetenv("ENGINE_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SilenceThreshold != 0.8 {
		t.Errorf("Expected SilenceThreshold 0.8, got %v", cfg.SilenceThreshold)
	}
	if cfg.MaxSilenceFrames != 3 {
		t.Errorf("Expected MaxSilenceFrames 3, got %d", cfg.MaxSilenceFrames)
	}
	if cfg.EnginePath != "/opt/engines/rnnoise.wasm" {
		t.Errorf("Expected EnginePath override, got '%s'", cfg.EnginePath)
	}
}

func TestLoad_RejectsOutOfRangeThreshold(t *testing.T) {
	os.Setenv("SILENCE_THRESHOLD", "1.5")
	defer os.Unsetenv("SILENCE_THRESHOLD")

	if _, err := Load(); err == nil {
		t.Error("Expected error for threshold outside [0, 1]")
	}
}

func TestLoad_RejectsNegativeSilenceFrames(t *testing.T) {
	os.Setenv("MAX_SILENCE_FRAMES", "-1")
	defer os.Unsetenv("MAX_SILENCE_FRAMES")

	if _, err := Load(); err == nil {
		t.Error("Expected error for negative MAX_SILENCE_FRAMES")
	}
}
