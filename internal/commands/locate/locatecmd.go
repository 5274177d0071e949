package locate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/locator"
	"github.com/indaco/venvsync/internal/printer"
	"github.com/urfave/cli/v3"
)

// Discovery is the machine-readable locate output.
type Discovery struct {
	Found        bool   `json:"found"`
	File         string `json:"file"`
	Interpreter  string `json:"interpreter,omitempty"`
	VenvDir      string `json:"venvDir,omitempty"`
	ProjectRoot  string `json:"projectRoot,omitempty"`
	SitePackages string `json:"sitePackages,omitempty"`
}

// Run returns the "locate" command.
func Run(a *app.App) *cli.Command {
	return &cli.Command{
		Name:      "locate",
		Usage:     "Print the virtual environment for a file without changing anything",
		UsageText: "venvsync locate [--format text|json] [path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json",
				Value:   "text",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runLocateCmd(ctx, cmd, a)
		},
	}
}

func runLocateCmd(ctx context.Context, cmd *cli.Command, a *app.App) error {
	format := cmd.String("format")
	if format != "text" && format != "json" {
		return cli.Exit(fmt.Sprintf("unknown format %q, expected text or json", format), 1)
	}

	file := a.Workspace
	if cmd.Args().Present() {
		resolved, err := a.Resolve(cmd.Args().First())
		if err != nil {
			return err
		}
		file = resolved
	}

	d, err := Discover(ctx, a, file)
	if err != nil {
		return err
	}

	if format == "json" {
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		printer.Println(string(data))
	} else {
		printText(d)
	}

	if !d.Found {
		return cli.Exit("", 1)
	}
	return nil
}

// Discover locates the venv for file and its package directory.
func Discover(ctx context.Context, a *app.App, file string) (Discovery, error) {
	d := Discovery{File: file}

	res, err := a.Runner().Locate(ctx, file)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			return d, nil
		}
		return d, err
	}

	d.Found = true
	d.Interpreter = res.Interpreter
	d.VenvDir = res.VenvDir
	d.ProjectRoot = res.ProjectRoot
	if site, err := locator.New(a.FS).SitePackages(ctx, res.VenvDir); err == nil {
		d.SitePackages = site
	}
	return d, nil
}

func printText(d Discovery) {
	if !d.Found {
		printer.PrintWarning(fmt.Sprintf("No virtual environment found for %s", d.File))
		return
	}
	printer.PrintKeyValue("interpreter", d.Interpreter)
	printer.PrintKeyValue("venv", d.VenvDir)
	printer.PrintKeyValue("project root", d.ProjectRoot)
	site := d.SitePackages
	if site == "" {
		site = printer.Faint("(not found)")
	}
	printer.PrintKeyValue("site-packages", site)
}
