package initialize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/indaco/venvsync/internal/config"
)

// Template is a starting configuration for a common editor setup.
type Template struct {
	Name         string
	Description  string
	SettingsPath string
	Analysis     bool
	Namespaces   []string
}

// AllTemplates returns all available templates.
func AllTemplates() []Template {
	return []Template{
		{
			Name:         "interpreter",
			Description:  "Only point the editor at the nearest interpreter",
			SettingsPath: config.DefaultSettingsPath,
		},
		{
			Name:         "pylance",
			Description:  "Interpreter plus Pylance analysis paths in settings.json",
			SettingsPath: config.DefaultSettingsPath,
			Analysis:     true,
			Namespaces:   []string{"python.analysis"},
		},
		{
			Name:         "basedpyright",
			Description:  "Interpreter plus basedpyright analysis paths in settings.json",
			SettingsPath: config.DefaultSettingsPath,
			Analysis:     true,
			Namespaces:   []string{"basedpyright.analysis"},
		},
		{
			Name:         "pyproject",
			Description:  "Pyright analysis paths in pyproject.toml [tool.pyright]",
			SettingsPath: "pyproject.toml",
			Analysis:     true,
		},
	}
}

// TemplateNames returns the names of all available templates.
func TemplateNames() []string {
	templates := AllTemplates()
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return names
}

// GetTemplate returns the template with the given name, or an error if not found.
func GetTemplate(name string) (*Template, error) {
	for _, t := range AllTemplates() {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(TemplateNames(), ", "))
}

// IsValidTemplate checks if the given name is a valid template.
func IsValidTemplate(name string) bool {
	return slices.Contains(TemplateNames(), name)
}

// Config builds a configuration from the template.
func (t Template) Config(venvFolders []string) *config.Config {
	enabled := t.Analysis
	cfg := &config.Config{
		VenvFolders: slices.Clone(venvFolders),
		Settings:    &config.SettingsConfig{Path: t.SettingsPath},
		Analysis: &config.AnalysisConfig{
			Enabled:    &enabled,
			Namespaces: slices.Clone(t.Namespaces),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}
