package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/venvsync/internal/core"
)

// FileName is the configuration file looked up in the workspace root.
const FileName = ".venvsync.yaml"

const (
	DefaultSettingsPath     = ".vscode/settings.json"
	DefaultInterpreterKey   = "python.defaultInterpreterPath"
	DefaultDiagnosticMode   = "workspace"
	DefaultTypeCheckingMode = "standard"
	DefaultStateFile        = ".venvsync/state.json"
)

// DefaultVenvFolders is the candidate list used when none is configured.
var DefaultVenvFolders = []string{".venv"}

// DefaultNamespaces are the analysis sections of a settings.json store.
var DefaultNamespaces = []string{"python.analysis", "basedpyright.analysis"}

// DefaultTOMLNamespaces are the analysis sections of a pyproject.toml store.
var DefaultTOMLNamespaces = []string{"tool.pyright"}

// DefaultExclude seeds the exclude list: build, dist, VCS and cache
// directories plus every hidden directory.
var DefaultExclude = []string{
	"**/build",
	"**/dist",
	"**/.git",
	"**/__pycache__",
	"**/.*",
}

// SettingsConfig locates the editor settings store.
type SettingsConfig struct {
	Path string `yaml:"path,omitempty"`

	// InterpreterKey is nil when unset; an empty string disables the
	// interpreter write.
	InterpreterKey *string `yaml:"interpreter_key,omitempty"`
}

// AnalysisConfig controls static-analysis settings reconciliation.
type AnalysisConfig struct {
	Enabled          *bool    `yaml:"enabled,omitempty"`
	Namespaces       []string `yaml:"namespaces,omitempty"`
	DiagnosticMode   string   `yaml:"diagnostic_mode,omitempty"`
	TypeCheckingMode string   `yaml:"type_checking_mode,omitempty"`
	Exclude          []string `yaml:"exclude,omitempty"`
}

// Config is the main configuration structure for venvsync.
type Config struct {
	VenvFolders         []string        `yaml:"venv_folders,omitempty"`
	RestrictToWorkspace *bool           `yaml:"restrict_to_workspace,omitempty"`
	Settings            *SettingsConfig `yaml:"settings,omitempty"`
	Analysis            *AnalysisConfig `yaml:"analysis,omitempty"`
	StateFile           string          `yaml:"state_file,omitempty"`
	LogFile             string          `yaml:"log_file,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field. Defaults that depend on the
// settings format (namespaces, interpreter key) follow Settings.Path.
func (c *Config) ApplyDefaults() {
	if len(c.VenvFolders) == 0 {
		c.VenvFolders = append([]string(nil), DefaultVenvFolders...)
	}
	if c.RestrictToWorkspace == nil {
		c.RestrictToWorkspace = boolPtr(true)
	}

	if c.Settings == nil {
		c.Settings = &SettingsConfig{}
	}
	if c.Settings.Path == "" {
		c.Settings.Path = DefaultSettingsPath
	}
	isTOML := strings.EqualFold(filepath.Ext(c.Settings.Path), ".toml")
	if c.Settings.InterpreterKey == nil {
		key := DefaultInterpreterKey
		if isTOML {
			key = ""
		}
		c.Settings.InterpreterKey = &key
	}

	if c.Analysis == nil {
		c.Analysis = &AnalysisConfig{}
	}
	if c.Analysis.Enabled == nil {
		c.Analysis.Enabled = boolPtr(false)
	}
	if len(c.Analysis.Namespaces) == 0 {
		if isTOML {
			c.Analysis.Namespaces = append([]string(nil), DefaultTOMLNamespaces...)
		} else {
			c.Analysis.Namespaces = append([]string(nil), DefaultNamespaces...)
		}
	}
	if c.Analysis.DiagnosticMode == "" {
		c.Analysis.DiagnosticMode = DefaultDiagnosticMode
	}
	if c.Analysis.TypeCheckingMode == "" {
		c.Analysis.TypeCheckingMode = DefaultTypeCheckingMode
	}
	if c.Analysis.Exclude == nil {
		c.Analysis.Exclude = append([]string(nil), DefaultExclude...)
	}

	if c.StateFile == "" {
		c.StateFile = DefaultStateFile
	}
}

// Restricted reports whether discovery stops at the workspace root.
func (c *Config) Restricted() bool {
	return c.RestrictToWorkspace == nil || *c.RestrictToWorkspace
}

// AnalysisEnabled reports whether analysis settings are reconciled.
func (c *Config) AnalysisEnabled() bool {
	return c.Analysis != nil && c.Analysis.Enabled != nil && *c.Analysis.Enabled
}

// InterpreterKey returns the settings key for the interpreter path, or ""
// when the interpreter write is disabled.
func (c *Config) InterpreterKey() string {
	if c.Settings == nil || c.Settings.InterpreterKey == nil {
		return DefaultInterpreterKey
	}
	return *c.Settings.InterpreterKey
}

// SettingsFile resolves the settings store path against workspace.
func (c *Config) SettingsFile(workspace string) string {
	path := DefaultSettingsPath
	if c.Settings != nil && c.Settings.Path != "" {
		path = c.Settings.Path
	}
	return resolve(workspace, path)
}

// StatePath resolves the state file path against workspace.
func (c *Config) StatePath(workspace string) string {
	path := c.StateFile
	if path == "" {
		path = DefaultStateFile
	}
	return resolve(workspace, path)
}

// LogPath resolves the log file path against workspace; "" disables it.
func (c *Config) LogPath(workspace string) string {
	if c.LogFile == "" {
		return ""
	}
	return resolve(workspace, c.LogFile)
}

func resolve(workspace, path string) string {
	path = filepath.FromSlash(os.ExpandEnv(path))
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(workspace, path)
}

func boolPtr(b bool) *bool { return &b }

// FileOpener abstracts file opening operations for testability.
type FileOpener interface {
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
}

// FileWriter abstracts file writing operations for testability.
type FileWriter interface {
	WriteFile(file *os.File, data []byte) (int, error)
}

// ConfigSaver handles configuration saving with injected dependencies.
type ConfigSaver struct {
	marshaler  core.Marshaler
	fileOpener FileOpener
	fileWriter FileWriter
}

type osFileOpener struct{}

func (o *osFileOpener) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

type osFileWriter struct{}

func (w *osFileWriter) WriteFile(file *os.File, data []byte) (int, error) {
	return file.Write(data)
}

// fileHeader is written above a saved configuration.
const fileHeader = `# venvsync configuration file
#
# venv_folders lists the folder names searched for a virtual environment,
# nearest directory first. With analysis enabled, venvsync also keeps the
# include, exclude and extraPaths settings of each namespace in sync.
# Entries it did not add itself are never removed.

`

type yamlMarshaler struct{}

func (m *yamlMarshaler) Marshal(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(*Config); ok {
		data = append([]byte(fileHeader), data...)
	}
	return data, nil
}

// NewConfigSaver creates a ConfigSaver with the given dependencies.
// If any dependency is nil, the production default is used.
func NewConfigSaver(marshaler core.Marshaler, opener FileOpener, writer FileWriter) *ConfigSaver {
	if marshaler == nil {
		marshaler = &yamlMarshaler{}
	}
	if opener == nil {
		opener = &osFileOpener{}
	}
	if writer == nil {
		writer = &osFileWriter{}
	}
	return &ConfigSaver{
		marshaler:  marshaler,
		fileOpener: opener,
		fileWriter: writer,
	}
}

// Save writes the configuration to FileName inside workspace.
func (s *ConfigSaver) Save(cfg *Config, workspace string) error {
	return s.SaveTo(cfg, filepath.Join(workspace, FileName))
}

// SaveTo writes the configuration to the specified file path.
func (s *ConfigSaver) SaveTo(cfg *Config, configFile string) error {
	file, err := s.fileOpener.OpenFile(configFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open config file %q: %w", configFile, err)
	}
	defer file.Close()

	data, err := s.marshaler.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to %q: %w", configFile, err)
	}

	if _, err := s.fileWriter.WriteFile(file, data); err != nil {
		return fmt.Errorf("failed to write config to %q: %w", configFile, err)
	}

	return nil
}

var defaultConfigSaver = NewConfigSaver(nil, nil, nil)

// LoadConfigFn and SaveConfigFn are package-level seams replaced in tests.
var (
	LoadConfigFn = loadConfig
	SaveConfigFn = func(cfg *Config, workspace string) error {
		return defaultConfigSaver.Save(cfg, workspace)
	}
)

// Environment overrides, applied after the file is read.
const (
	EnvVenvFolders = "VENVSYNC_VENV_FOLDERS"
	EnvAnalysis    = "VENVSYNC_ANALYSIS"
	EnvLogFile     = "VENVSYNC_LOG_FILE"
)

// loadConfig reads configFile (FileName in workspace when empty) and applies
// environment overrides and defaults. A missing file yields the defaults.
func loadConfig(workspace, configFile string) (*Config, error) {
	if configFile == "" {
		configFile = filepath.Join(workspace, FileName)
	}

	cfg := &Config{}
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
		if err := decoder.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return nil, fmt.Errorf("failed to parse %q: %w", configFile, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read %q: %w", configFile, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvVenvFolders)); v != "" {
		var folders []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				folders = append(folders, f)
			}
		}
		cfg.VenvFolders = folders
	}

	if v := strings.TrimSpace(os.Getenv(EnvAnalysis)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvAnalysis, v, err)
		}
		if cfg.Analysis == nil {
			cfg.Analysis = &AnalysisConfig{}
		}
		cfg.Analysis.Enabled = &enabled
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	return nil
}

// ConfigFilePerm defines secure file permissions for config files.
const ConfigFilePerm = core.PermOwnerRW
