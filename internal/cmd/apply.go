package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/preproc/internal/executor"
	"github.com/harrison/preproc/internal/filelock"
	"github.com/harrison/preproc/internal/logger"
	"github.com/harrison/preproc/internal/models"
	"github.com/harrison/preproc/internal/pathtest"
	"github.com/harrison/preproc/internal/tag"
)

// sharedTag is the value a step flag takes when given without a tag name.
// It is not a valid tag name.
const sharedTag = "*"

// applyOptions holds the apply command's flags
type applyOptions struct {
	tag         string
	pathTest    string
	pick        string
	replace     string
	replacement string
	remove      string
	allowErrors bool
	output      string
	srcPath     string
	linefeed    string
	logLevel    string
}

// NewApplyCommand creates the apply command
func NewApplyCommand() *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply [file...]",
		Short: "Run one pipeline over files without a config",
		Long: `Join the given files (or standard input when none is given), run a
single pick/replace/remove pipeline built from flags, and print the result.

A step flag given without a value uses --tag, or the default tag SPEC.

Examples:
  preproc apply --pick=DOC page.html
  preproc apply --remove=DEBUG --path-test 'glob:**/prod/**' src/prod/app.js
  preproc apply --replace=VERSION --replacement 1.4.2 -o dist/app.js src/*.js
  cat page.html | preproc apply --remove --tag DRAFT`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.tag, "tag", "", "Tag shared by every step (default SPEC)")
	flags.StringVar(&opts.pathTest, "path-test", "", "Path test shared by replace and remove")
	flags.StringVar(&opts.pick, "pick", "", "Keep only the first region of `TAG`")
	flags.StringVar(&opts.replace, "replace", "", "Replace regions of `TAG` with --replacement")
	flags.StringVar(&opts.replacement, "replacement", "", "Replacement text for --replace")
	flags.StringVar(&opts.remove, "remove", "", "Remove regions of `TAG`")
	flags.BoolVar(&opts.allowErrors, "allow-errors", false, "Warn instead of failing when --pick finds no region")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the result to this file instead of stdout")
	flags.StringVar(&opts.srcPath, "src-path", "", "Source path for path tests when reading standard input")
	flags.StringVar(&opts.linefeed, "linefeed", "\n", "Separator placed between joined files")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level for messages on stderr")

	for _, name := range []string{"pick", "replace", "remove"} {
		flags.Lookup(name).NoOptDefVal = sharedTag
	}

	return cmd
}

// pipelineOptions turns the flags into pipeline options
func (o *applyOptions) pipelineOptions(changed func(string) bool) (models.Options, error) {
	stepTag := func(flag, value string) (string, error) {
		if value == sharedTag {
			return "", nil
		}
		if !tag.ValidName(value) {
			return "", fmt.Errorf("--%s: invalid tag name %q", flag, value)
		}
		return value, nil
	}

	opts := models.Options{Tag: o.tag, PathTest: o.pathTest}
	if o.tag != "" && !tag.ValidName(o.tag) {
		return opts, fmt.Errorf("--tag: invalid tag name %q", o.tag)
	}
	if o.pathTest != "" {
		if _, err := pathtest.Compile(o.pathTest); err != nil {
			return opts, err
		}
	}

	if changed("pick") {
		name, err := stepTag("pick", o.pick)
		if err != nil {
			return opts, err
		}
		opts.Pick = &models.PickOptions{Tag: name, AllowErrors: o.allowErrors}
	}
	if changed("replace") {
		name, err := stepTag("replace", o.replace)
		if err != nil {
			return opts, err
		}
		opts.Replace = &models.ReplaceOptions{Tag: name, Replacement: o.replacement}
	}
	if changed("remove") {
		name, err := stepTag("remove", o.remove)
		if err != nil {
			return opts, err
		}
		opts.Remove = &models.RemoveOptions{Tag: name}
	}

	if opts.IsEmpty() {
		return opts, errors.New("nothing to do: use --pick, --replace or --remove")
	}
	return opts, nil
}

// runApply implements the apply command logic
func runApply(cmd *cobra.Command, o *applyOptions, args []string) error {
	opts, err := o.pipelineOptions(cmd.Flags().Changed)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), o.logLevel)
	targetExec := executor.NewTargetExecutor(
		executor.WithLogger(log),
		executor.WithLinefeed(o.linefeed),
	)

	var doc, srcPath string
	if len(args) == 0 {
		if cmd.InOrStdin() == io.Reader(os.Stdin) && !stdinIsPipe() {
			return errors.New("no input: pass files or pipe text on standard input")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
		doc = string(data)
		if o.srcPath != "" {
			if srcPath, err = filepath.Abs(o.srcPath); err != nil {
				return err
			}
		}
	} else {
		input, err := targetExec.Load(args)
		if err != nil {
			return err
		}
		if len(input.Sources) == 0 {
			log.LogWarn("No source files found; nothing written.")
			return nil
		}
		doc, srcPath = input.Doc, input.SrcPath
	}

	out, err := executor.NewPipeline(tag.NewEngine()).Run(doc, srcPath, opts)
	if err != nil {
		if executor.IsTagNotFound(err) && o.allowErrors {
			log.LogWarn(err.Error())
			return nil
		}
		return err
	}

	if o.output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	if err := filelock.LockAndWrite(o.output, []byte(out)); err != nil {
		return err
	}
	log.LogInfo(fmt.Sprintf("File %q created.", o.output))
	return nil
}

// stdinIsPipe reports whether standard input is redirected.
func stdinIsPipe() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice == 0
}
