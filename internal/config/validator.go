package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/indaco/venvsync/internal/core"
	"github.com/indaco/venvsync/internal/state"
)

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	// Category is the validation category (e.g., "YAML Syntax", "Settings").
	Category string

	// Passed indicates if the check passed.
	Passed bool

	// Message provides details about the validation result.
	Message string

	// Warning indicates if this is a warning rather than an error.
	Warning bool
}

// Validator validates configuration files and settings.
type Validator struct {
	fs          core.FileSystem
	cfg         *Config
	configPath  string
	workspace   string
	validations []ValidationResult
}

// NewValidator creates a new configuration validator for workspace.
func NewValidator(fs core.FileSystem, cfg *Config, configPath string, workspace string) *Validator {
	return &Validator{
		fs:          fs,
		cfg:         cfg,
		configPath:  configPath,
		workspace:   workspace,
		validations: make([]ValidationResult, 0),
	}
}

// Validate runs all validation checks and returns the results.
func (v *Validator) Validate(ctx context.Context) ([]ValidationResult, error) {
	v.validations = make([]ValidationResult, 0)

	v.validateYAMLSyntax(ctx)
	v.validateVenvFolders()
	v.validateSettings(ctx)
	v.validateAnalysis()
	v.validateState(ctx)

	return v.validations, nil
}

func (v *Validator) addValidation(category string, passed bool, message string, warning bool) {
	v.validations = append(v.validations, ValidationResult{
		Category: category,
		Passed:   passed,
		Message:  message,
		Warning:  warning,
	})
}

func (v *Validator) validateYAMLSyntax(ctx context.Context) {
	if v.configPath == "" {
		v.addValidation("YAML Syntax", true, "No "+FileName+" file found, using defaults", false)
		return
	}
	if _, err := v.fs.Stat(ctx, v.configPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			v.addValidation("YAML Syntax", true, "No "+FileName+" file found, using defaults", false)
		} else {
			v.addValidation("YAML Syntax", false, fmt.Sprintf("Failed to access config file: %v", err), false)
		}
		return
	}

	// Reaching this point means LoadConfigFn already decoded it strictly.
	v.addValidation("YAML Syntax", true, "Configuration file is valid YAML", false)
}

func (v *Validator) validateVenvFolders() {
	if v.cfg == nil {
		return
	}
	if len(v.cfg.VenvFolders) == 0 {
		v.addValidation("Venv Folders", false, "venv_folders must list at least one folder name", false)
		return
	}

	seen := make(map[string]bool)
	ok := true
	for i, name := range v.cfg.VenvFolders {
		switch {
		case strings.TrimSpace(name) == "":
			v.addValidation("Venv Folders", false, fmt.Sprintf("Folder %d: name is empty", i+1), false)
			ok = false
		case strings.ContainsAny(name, `/\`):
			v.addValidation("Venv Folders", false,
				fmt.Sprintf("Folder %d: '%s' must be a folder name, not a path", i+1, name), false)
			ok = false
		case name == "." || name == "..":
			v.addValidation("Venv Folders", false, fmt.Sprintf("Folder %d: '%s' is not allowed", i+1, name), false)
			ok = false
		case seen[name]:
			v.addValidation("Venv Folders", true, fmt.Sprintf("Folder %d: '%s' is listed twice", i+1, name), true)
		}
		seen[name] = true
	}
	if ok {
		v.addValidation("Venv Folders", true,
			fmt.Sprintf("Searching for %s", strings.Join(v.cfg.VenvFolders, ", ")), false)
	}
}

func (v *Validator) validateSettings(ctx context.Context) {
	if v.cfg == nil {
		return
	}
	path := v.cfg.SettingsFile(v.workspace)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".toml" {
		v.addValidation("Settings", true,
			fmt.Sprintf("Settings file '%s' has no .json or .toml extension, treating it as JSON", path), true)
	}

	if _, err := v.fs.Stat(ctx, path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			v.addValidation("Settings", true, fmt.Sprintf("Settings file '%s' will be created on first sync", path), false)
		} else {
			v.addValidation("Settings", false, fmt.Sprintf("Cannot access settings file '%s': %v", path, err), false)
		}
	} else {
		v.addValidation("Settings", true, fmt.Sprintf("Settings file '%s' found", path), false)
	}

	if v.cfg.InterpreterKey() == "" {
		v.addValidation("Settings", true, "interpreter_key is empty, the interpreter path will not be written", true)
	}
}

func (v *Validator) validateAnalysis() {
	if v.cfg == nil || !v.cfg.AnalysisEnabled() {
		return
	}
	a := v.cfg.Analysis

	for i, ns := range a.Namespaces {
		if strings.TrimSpace(ns) == "" || strings.HasPrefix(ns, ".") || strings.HasSuffix(ns, ".") {
			v.addValidation("Analysis", false, fmt.Sprintf("Namespace %d: '%s' is not a valid section name", i+1, ns), false)
		}
	}

	validModes := []string{"off", "basic", "standard", "strict", "recommended", "all"}
	if !slices.Contains(validModes, a.TypeCheckingMode) {
		v.addValidation("Analysis", true,
			fmt.Sprintf("type_checking_mode '%s' is not one of %s", a.TypeCheckingMode, strings.Join(validModes, ", ")), true)
	}
	if a.DiagnosticMode != "workspace" && a.DiagnosticMode != "openFilesOnly" {
		v.addValidation("Analysis", true,
			fmt.Sprintf("diagnostic_mode '%s' is neither 'workspace' nor 'openFilesOnly'", a.DiagnosticMode), true)
	}

	for i, pattern := range a.Exclude {
		if _, err := filepath.Match(strings.ReplaceAll(pattern, "**", "*"), ""); err != nil {
			v.addValidation("Analysis", false, fmt.Sprintf("Exclude pattern %d: '%s' is malformed", i+1, pattern), false)
		}
	}

	v.addValidation("Analysis", true,
		fmt.Sprintf("Reconciling %d namespace(s) with %d exclude pattern(s)", len(a.Namespaces), len(a.Exclude)), false)
}

func (v *Validator) validateState(ctx context.Context) {
	if v.cfg == nil {
		return
	}
	store := state.NewStore(v.fs, v.cfg.StatePath(v.workspace))
	if err := store.Load(ctx); err != nil {
		v.addValidation("State", false, fmt.Sprintf("State file unreadable: %v", err), false)
		return
	}
	if store.Migrated() {
		v.addValidation("State", true, "State file uses a legacy layout and will be upgraded on next sync", true)
		return
	}
	v.addValidation("State", true,
		fmt.Sprintf("State file tracks %d project root(s)", len(store.Record().Roots)), false)
}

// HasErrors returns true if any validation failed.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if !r.Passed && !r.Warning {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of failed validations.
func ErrorCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if !r.Passed && !r.Warning {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warnings.
func WarningCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if r.Warning {
			count++
		}
	}
	return count
}
