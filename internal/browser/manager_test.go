package browser

import (
	"testing"
)

func TestDetectMode(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected Mode
	}{
		{"no markers", nil, ModeLocal},
		{"explicit chrome path", map[string]string{"RDYSL_CHROME_PATH": "/opt/headless-shell"}, ModeConstrained},
		{"lambda", map[string]string{"AWS_LAMBDA_FUNCTION_NAME": "scraper"}, ModeConstrained},
		{"cloud functions", map[string]string{"FUNCTION_TARGET": "Scrape"}, ModeConstrained},
		{"cloud run", map[string]string{"K_SERVICE": "rdysl"}, ModeConstrained},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := DetectMode(); got != tt.expected {
				t.Errorf("DetectMode() = %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestNewManagerDefaultsMode(t *testing.T) {
	m := NewManager(Config{})
	if m.cfg.Mode != ModeLocal && m.cfg.Mode != ModeConstrained {
		t.Errorf("NewManager left mode unset: %q", m.cfg.Mode)
	}
}

func TestAllocatorOptionsConstrained(t *testing.T) {
	local := NewManager(Config{Mode: ModeLocal})
	constrained := NewManager(Config{Mode: ModeConstrained, ChromePath: "/opt/headless-shell"})

	// Constrained mode adds process-restriction flags and the exec path on
	// top of the shared identity options.
	if len(constrained.allocatorOptions()) <= len(local.allocatorOptions()) {
		t.Error("constrained mode should add allocator options beyond local mode")
	}
}

func TestReleaseNilAndDouble(t *testing.T) {
	m := NewManager(Config{Mode: ModeLocal})

	// Release must be safe on nil and on an already-released session.
	m.Release(nil)

	s := &Session{
		cancelCtx:   func() {},
		cancelAlloc: func() {},
	}
	m.Release(s)
	m.Release(s)
	if !s.released {
		t.Error("session should be marked released")
	}
}
