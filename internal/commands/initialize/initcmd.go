package initialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/config"
	"github.com/indaco/venvsync/internal/printer"
	"github.com/indaco/venvsync/internal/tui"
	"github.com/urfave/cli/v3"
)

// Prompter abstracts interactive prompts for testability.
type Prompter interface {
	Confirm(title, description string, def bool) (bool, error)
	Input(title, description, def string, validate func(string) error) (string, error)
	MultiSelect(title, description string, options, defaults []string) ([]string, error)
}

// TUIPrompter implements Prompter using the tui package.
type TUIPrompter struct{}

func (TUIPrompter) Confirm(title, description string, def bool) (bool, error) {
	return tui.Confirm(title, description, def)
}

func (TUIPrompter) Input(title, description, def string, validate func(string) error) (string, error) {
	return tui.Input(title, description, def, validate)
}

func (TUIPrompter) MultiSelect(title, description string, options, defaults []string) ([]string, error) {
	return tui.MultiSelect(title, description, options, defaults)
}

// NewPrompter is replaced in tests.
var NewPrompter = func() Prompter { return TUIPrompter{} }

// isInteractive is replaced in tests.
var isInteractive = tui.IsInteractive

// Run returns the "init" command.
func Run(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create " + config.FileName + " in the workspace",
		UsageText: fmt.Sprintf(`venvsync init [--yes] [--template name] [--force]

Templates: %s`, strings.Join(TemplateNames(), ", ")),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Accept detected defaults without prompting",
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "Starting template (detected when omitted)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runInitCmd(ctx, cmd, a)
		},
	}
}

func runInitCmd(ctx context.Context, cmd *cli.Command, a *app.App) error {
	target := filepath.Join(a.Workspace, config.FileName)
	if _, err := a.FS.Stat(ctx, target); err == nil && !cmd.Bool("force") {
		return cli.Exit(fmt.Sprintf("%s already exists, use --force to overwrite", target), 1)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %q: %w", target, err)
	}

	name := cmd.String("template")
	if name == "" {
		name = DetectTemplate(ctx, a.FS, a.Workspace)
	}
	tmpl, err := GetTemplate(name)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	folders := DetectVenvFolders(ctx, a.FS, a.Workspace)
	if len(folders) == 0 {
		folders = slices.Clone(config.DefaultVenvFolders)
	}
	cfg := tmpl.Config(folders)

	if !cmd.Bool("yes") && isInteractive() {
		cfg, err = promptConfig(NewPrompter(), tmpl, folders)
		if err != nil {
			return fmt.Errorf("init canceled: %w", err)
		}
	}

	if err := config.SaveConfigFn(cfg, a.Workspace); err != nil {
		return err
	}

	printer.PrintSuccess(fmt.Sprintf("Created %s (template %s)", target, tmpl.Name))
	printer.PrintFaint(fmt.Sprintf("Searching for: %s", strings.Join(cfg.VenvFolders, ", ")))
	if cfg.AnalysisEnabled() {
		printer.PrintFaint(fmt.Sprintf("Analysis namespaces: %s", strings.Join(cfg.Analysis.Namespaces, ", ")))
	}
	return nil
}

func promptConfig(p Prompter, tmpl *Template, detected []string) (*config.Config, error) {
	options := slices.Clone(detected)
	for _, f := range CommonVenvFolders {
		if !slices.Contains(options, f) {
			options = append(options, f)
		}
	}

	folders, err := p.MultiSelect("Virtual environment folders",
		"Folder names searched for an interpreter, nearest directory first", options, detected)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		folders = slices.Clone(detected)
	}

	path, err := p.Input("Settings file", "Relative to the workspace root (.json or .toml)",
		tmpl.SettingsPath, validateSettingsPath)
	if err != nil {
		return nil, err
	}

	analysis, err := p.Confirm("Sync analysis settings?",
		"Keep include, exclude and extraPaths in step with the active project", tmpl.Analysis)
	if err != nil {
		return nil, err
	}

	t := *tmpl
	t.SettingsPath = strings.TrimSpace(path)
	t.Analysis = analysis
	if strings.EqualFold(filepath.Ext(t.SettingsPath), ".toml") {
		// JSON namespaces do not exist in pyproject.toml.
		t.Namespaces = nil
	}
	return t.Config(folders), nil
}

func validateSettingsPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("settings file is required")
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".json", ".toml":
		return nil
	}
	return errors.New("settings file must end in .json or .toml")
}
