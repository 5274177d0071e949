package doctor

import (
	"context"
	"fmt"

	"github.com/indaco/venvsync/internal/app"
	"github.com/indaco/venvsync/internal/config"
	"github.com/indaco/venvsync/internal/printer"
	"github.com/urfave/cli/v3"
)

// Run returns the "doctor" command.
func Run(a *app.App) *cli.Command {
	return &cli.Command{
		Name:      "doctor",
		Aliases:   []string{"check"},
		Usage:     "Validate the configuration and the state file",
		UsageText: "venvsync doctor",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDoctorCmd(ctx, a)
		},
	}
}

func runDoctorCmd(ctx context.Context, a *app.App) error {
	validator := config.NewValidator(a.FS, a.Config, a.ConfigPath, a.Workspace)
	results, err := validator.Validate(ctx)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	printer.PrintBold(fmt.Sprintf("Workspace %s", a.Workspace))
	category := ""
	for _, r := range results {
		if r.Category != category {
			category = r.Category
			printer.PrintInfo(category)
		}
		printer.PrintCheck(r.Passed, r.Warning, r.Message)
	}

	errs, warnings := config.ErrorCount(results), config.WarningCount(results)
	summary := fmt.Sprintf("%d error(s), %d warning(s)", errs, warnings)
	if config.HasErrors(results) {
		printer.PrintError(summary)
		return cli.Exit("configuration has errors", 1)
	}
	if warnings > 0 {
		printer.PrintWarning(summary)
	} else {
		printer.PrintSuccess("Configuration is valid")
	}
	return nil
}
