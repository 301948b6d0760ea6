package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/preproc/internal/executor"
	"github.com/harrison/preproc/internal/logger"
	"github.com/harrison/preproc/internal/tag"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [target...]",
		Short: "Build configured targets",
		Long: `Build the named targets, or every configured target when none is named.

Each target expands its source patterns, joins the files it finds, runs its
pick/replace/remove pipeline and writes the destination. Targets run
concurrently, bounded by max_concurrency.

Configuration is loaded from .preproc/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  preproc run                          # Build every target
  preproc run site docs                # Build two targets
  preproc run --dry-run --diff         # Show what would change
  preproc run --report build.json      # Write a JSON build report
  preproc run --log-dir .preproc/logs  # Keep per-run log files`,
		RunE: runCommand,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .preproc/config.yaml)")
	cmd.Flags().Bool("dry-run", false, "Run every pipeline without writing destinations")
	cmd.Flags().Bool("diff", false, "With --dry-run, print a diff of sources against output")
	cmd.Flags().Int("max-concurrency", -1, "Maximum number of concurrent targets (0 = unlimited, -1 = use config)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().String("report", "", "Write a JSON build report to this path")
	cmd.Flags().Bool("skip-unchanged", false, "Leave destinations whose content would not change")
	cmd.Flags().Bool("no-skip-unchanged", false, "Always rewrite destinations (overrides config)")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Get flag values
	dryRunFlag, _ := cmd.Flags().GetBool("dry-run")
	showDiff, _ := cmd.Flags().GetBool("diff")
	maxConcurrencyFlag, _ := cmd.Flags().GetInt("max-concurrency")
	logLevelFlag, _ := cmd.Flags().GetString("log-level")
	logDirFlag, _ := cmd.Flags().GetString("log-dir")
	reportPath, _ := cmd.Flags().GetString("report")
	skipUnchangedFlag, _ := cmd.Flags().GetBool("skip-unchanged")

	// Validate conflicting flags
	if cmd.Flags().Changed("skip-unchanged") && cmd.Flags().Changed("no-skip-unchanged") {
		return fmt.Errorf("cannot use both --skip-unchanged and --no-skip-unchanged")
	}

	// Build flag pointers for merge (only non-default values)
	var maxConcurrencyPtr *int
	if cmd.Flags().Changed("max-concurrency") {
		maxConcurrencyPtr = &maxConcurrencyFlag
	}

	var logLevelPtr *string
	if cmd.Flags().Changed("log-level") {
		logLevelPtr = &logLevelFlag
	}

	var logDirPtr *string
	if cmd.Flags().Changed("log-dir") {
		logDirPtr = &logDirFlag
	}

	var dryRunPtr *bool
	if cmd.Flags().Changed("dry-run") {
		dryRunPtr = &dryRunFlag
	}

	var skipUnchangedPtr *bool
	if cmd.Flags().Changed("skip-unchanged") {
		skipUnchangedPtr = &skipUnchangedFlag
	} else if cmd.Flags().Changed("no-skip-unchanged") {
		noSkip := false
		skipUnchangedPtr = &noSkip
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(maxConcurrencyPtr, logLevelPtr, logDirPtr, dryRunPtr, skipUnchangedPtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	targets, err := cfg.Select(args)
	if err != nil {
		return err
	}

	// Console output always, file log when a log directory is configured
	consoleLog := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
	sinks := []logger.Sink{consoleLog}

	buildID := ""
	if logDir := cfg.ResolvedLogDir(); logDir != "" {
		fileLog, err := logger.NewFileLogger(logDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		sinks = append(sinks, fileLog)
		buildID = fileLog.BuildID()
	}
	if buildID == "" {
		buildID = uuid.NewString()
	}
	multiLog := logger.NewMultiLogger(sinks...)

	targetExec := executor.NewTargetExecutor(
		executor.WithPipeline(executor.NewPipeline(tag.NewEngine())),
		executor.WithLogger(multiLog),
		executor.WithBaseDir(cfg.BaseDir),
		executor.WithLinefeed(cfg.Linefeed),
		executor.WithDryRun(cfg.DryRun, showDiff),
		executor.WithSkipUnchanged(cfg.SkipUnchanged),
	)

	orch := executor.NewOrchestrator(targetExec, multiLog, cfg.MaxConcurrency)
	orch.SetBuildID(buildID)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, runErr := orch.Run(ctx, targets)

	if reportPath != "" {
		if err := executor.WriteReport(reportPath, result); err != nil {
			return err
		}
	}

	return runErr
}
