package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/indaco/venvsync/internal/core"
)

func findValidation(results []ValidationResult, category, fragment string) (ValidationResult, bool) {
	for _, r := range results {
		if r.Category == category && strings.Contains(r.Message, fragment) {
			return r, true
		}
	}
	return ValidationResult{}, false
}

func TestValidator_Defaults(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetDir("/ws")

	results, err := NewValidator(fs, Default(), "", "/ws").Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if HasErrors(results) {
		t.Errorf("expected no errors, got %+v", results)
	}
	if _, ok := findValidation(results, "Settings", "will be created on first sync"); !ok {
		t.Errorf("missing settings creation notice in %+v", results)
	}
	if _, ok := findValidation(results, "State", "tracks 0 project root(s)"); !ok {
		t.Errorf("missing state summary in %+v", results)
	}
}

func TestValidator_VenvFolders(t *testing.T) {
	tests := []struct {
		name       string
		folders    []string
		wantErrors int
		wantWarn   int
	}{
		{"valid", []string{".venv", "venv"}, 0, 0},
		{"path instead of name", []string{"envs/.venv"}, 1, 0},
		{"empty name", []string{" "}, 1, 0},
		{"dot", []string{".."}, 1, 0},
		{"duplicate", []string{".venv", ".venv"}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := core.NewMockFileSystem()
			cfg := &Config{VenvFolders: tt.folders}
			cfg.ApplyDefaults()

			results, _ := NewValidator(fs, cfg, "", "/ws").Validate(context.Background())
			var folderResults []ValidationResult
			for _, r := range results {
				if r.Category == "Venv Folders" {
					folderResults = append(folderResults, r)
				}
			}
			if got := ErrorCount(folderResults); got != tt.wantErrors {
				t.Errorf("ErrorCount = %d, want %d (%+v)", got, tt.wantErrors, folderResults)
			}
			if got := WarningCount(folderResults); got != tt.wantWarn {
				t.Errorf("WarningCount = %d, want %d (%+v)", got, tt.wantWarn, folderResults)
			}
		})
	}
}

func TestValidator_Analysis(t *testing.T) {
	enabled := true
	cfg := &Config{Analysis: &AnalysisConfig{
		Enabled:          &enabled,
		Namespaces:       []string{"python.analysis", ".bad"},
		TypeCheckingMode: "paranoid",
		Exclude:          []string{"**/[build"},
	}}
	cfg.ApplyDefaults()

	results, _ := NewValidator(core.NewMockFileSystem(), cfg, "", "/ws").Validate(context.Background())
	if got := ErrorCount(results); got != 2 {
		t.Errorf("ErrorCount = %d, want 2 (%+v)", got, results)
	}
	if r, ok := findValidation(results, "Analysis", "paranoid"); !ok || !r.Warning {
		t.Errorf("expected type checking warning, got %+v", results)
	}
}

func TestValidator_StateProblems(t *testing.T) {
	cfg := Default()

	fs := core.NewMockFileSystem()
	fs.SetFile("/ws/.venvsync/state.json", []byte(`{"python.analysis|/ws": "lib"}`))
	results, _ := NewValidator(fs, cfg, "", "/ws").Validate(context.Background())
	if r, ok := findValidation(results, "State", "legacy layout"); !ok || !r.Warning {
		t.Errorf("expected legacy warning, got %+v", results)
	}

	fs = core.NewMockFileSystem()
	fs.SetFile("/ws/.venvsync/state.json", []byte(`garbage`))
	results, _ = NewValidator(fs, cfg, "", "/ws").Validate(context.Background())
	if r, ok := findValidation(results, "State", "unreadable"); !ok || r.Passed {
		t.Errorf("expected state error, got %+v", results)
	}
}

func TestValidator_ConfigAccessError(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetError("/ws/"+FileName, errors.New("permission denied"))

	results, _ := NewValidator(fs, Default(), "/ws/"+FileName, "/ws").Validate(context.Background())
	if r, ok := findValidation(results, "YAML Syntax", "permission denied"); !ok || r.Passed {
		t.Errorf("expected YAML access error, got %+v", results)
	}
}
