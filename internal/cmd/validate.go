package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/preproc/internal/config"
	"github.com/harrison/preproc/internal/display"
	"github.com/harrison/preproc/internal/executor"
	"github.com/harrison/preproc/internal/logger"
	"github.com/harrison/preproc/internal/pathtest"
	"github.com/harrison/preproc/internal/tag"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [target...]",
		Short: "Check configuration and source tags without writing",
		Long: `Load the configuration and check, for the named targets or all of them:
  - Option values, tag names and path tests are valid
  - Every source file exists
  - Every tag used by the pipeline is well formed and balanced in the text
    its step sees: the joined sources for pick, the picked region after it
  - A pick tag without allow_errors is present
  - Inline path tests on open markers compile

Nothing is written. Exit code: 0 if valid, 1 if problems were found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return validateTargets(cfg, args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .preproc/config.yaml)")

	return cmd
}

// validateTargets checks cfg and the sources of the selected targets,
// printing a warning per problem to output.
func validateTargets(cfg *config.Config, names []string, output io.Writer) error {
	if err := cfg.Validate(); err != nil {
		display.Warning{
			Title:   "Invalid configuration",
			Message: err.Error(),
		}.Display(output)
		return fmt.Errorf("invalid configuration: %w", err)
	}

	targets, err := cfg.Select(names)
	if err != nil {
		return err
	}

	engine := tag.NewEngine()
	warnings := logger.NewConsoleLogger(output, "warn")
	loader := executor.NewTargetExecutor(
		executor.WithLogger(warnings),
		executor.WithBaseDir(cfg.BaseDir),
		executor.WithLinefeed(cfg.Linefeed),
	)

	progress := display.NewProgressIndicator(output, "Checking targets", len(targets))
	progress.Start()

	problems := 0
	for _, target := range targets {
		progress.Step(target.Label())

		input, err := loader.Load(target.Src)
		if err != nil {
			display.TagWarning(target.Name, nil, err).Display(output)
			problems++
			continue
		}
		problems += len(input.Missing)
		if len(input.Sources) == 0 {
			continue
		}

		report := func(err error) {
			display.TagWarning(target.Name, input.Sources, err).Display(output)
			problems++
		}

		// Replace and remove see what pick leaves, as in a build.
		steps := target.Options.Steps()
		doc := input.Doc
		if steps.Pick != nil {
			name := engine.TagName(steps.Pick.Tag)
			content, found, err := engine.Pick(name, doc)
			if err != nil {
				report(err)
				continue
			}
			if !found {
				if !steps.Pick.AllowErrors {
					report(&executor.TagNotFoundError{Tag: name})
				}
				continue
			}
			doc = content
			steps.Pick = nil
		}

		for _, name := range steps.Tags(tag.DefaultTag) {
			regions, err := engine.Regions(name, doc)
			if err != nil {
				report(err)
				continue
			}
			for _, err := range inlineTestErrors(regions) {
				report(err)
			}
		}
	}

	if problems > 0 {
		return fmt.Errorf("validation failed: %d problem(s) found", problems)
	}
	progress.Complete(fmt.Sprintf("%d target(s) valid", len(targets)))
	return nil
}

// inlineTestErrors compiles the inline path tests of regions and their
// nested regions.
func inlineTestErrors(regions []tag.Region) []error {
	var errs []error
	for _, r := range regions {
		if r.Open.Test != "" {
			if _, err := pathtest.Compile(r.Open.Test); err != nil {
				errs = append(errs, err)
			}
		}
		errs = append(errs, inlineTestErrors(r.Children)...)
	}
	return errs
}
