package logger

import "testing"

func TestBuildRejectsUnknownLevel(t *testing.T) {
	if _, err := Build(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{}, "json"},
		{Config{Debug: true}, "console"},
		{Config{Debug: true, Format: "json"}, "json"},
		{Config{Format: " Console "}, "console"},
	}
	for _, tt := range tests {
		if got := encodingFor(tt.cfg); got != tt.want {
			t.Fatalf("encodingFor(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestSamplerSkippedForDebugCLI(t *testing.T) {
	if samplerFor(Config{Debug: true}) != nil {
		t.Fatalf("expected no sampler in debug")
	}
	if samplerFor(Config{}) == nil {
		t.Fatalf("expected sampler by default")
	}
}
