package tui

import "testing"

func clearCI(t *testing.T) {
	t.Helper()
	for _, env := range ciEnvVars {
		t.Setenv(env, "")
	}
}

func TestInCI(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"no ci", "", false},
		{"generic", "CI", true},
		{"github", "GITHUB_ACTIONS", true},
		{"azure", "TF_BUILD", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCI(t)
			if tt.env != "" {
				t.Setenv(tt.env, "true")
			}
			if got := InCI(); got != tt.want {
				t.Errorf("InCI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInteractive_CIDisables(t *testing.T) {
	clearCI(t)
	t.Setenv("CI", "1")
	if IsInteractive() {
		t.Error("IsInteractive() should be false in CI")
	}
}

func TestTheme(t *testing.T) {
	if theme() == nil {
		t.Fatal("theme() returned nil")
	}
}
