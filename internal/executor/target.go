package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/preproc/internal/fileutil"
	"github.com/harrison/preproc/internal/filelock"
	"github.com/harrison/preproc/internal/models"
)

// TargetExecutor builds one target: it reads and joins the sources, runs the
// pipeline and writes the destination.
type TargetExecutor struct {
	pipeline      *Pipeline
	logger        Logger
	baseDir       string
	linefeed      string
	dryRun        bool
	showDiff      bool
	skipUnchanged bool
}

// TargetOption configures a TargetExecutor.
type TargetOption func(*TargetExecutor)

// WithPipeline sets the pipeline targets run through.
func WithPipeline(p *Pipeline) TargetOption {
	return func(te *TargetExecutor) { te.pipeline = p }
}

// WithLogger sets where source warnings go.
func WithLogger(l Logger) TargetOption {
	return func(te *TargetExecutor) { te.logger = l }
}

// WithBaseDir sets the directory relative source patterns resolve against.
func WithBaseDir(dir string) TargetOption {
	return func(te *TargetExecutor) { te.baseDir = dir }
}

// WithLinefeed sets the separator placed between joined sources.
func WithLinefeed(lf string) TargetOption {
	return func(te *TargetExecutor) { te.linefeed = lf }
}

// WithDryRun disables writes. With showDiff, results carry a diff of the
// joined sources against the output.
func WithDryRun(dryRun, showDiff bool) TargetOption {
	return func(te *TargetExecutor) {
		te.dryRun = dryRun
		te.showDiff = showDiff
	}
}

// WithSkipUnchanged leaves destinations that already hold the output alone.
func WithSkipUnchanged(skip bool) TargetOption {
	return func(te *TargetExecutor) { te.skipUnchanged = skip }
}

// NewTargetExecutor creates a TargetExecutor. Without options it uses a
// default pipeline, "\n" between sources and the working directory as base.
func NewTargetExecutor(opts ...TargetOption) *TargetExecutor {
	te := &TargetExecutor{linefeed: "\n"}
	for _, o := range opts {
		o(te)
	}
	if te.pipeline == nil {
		te.pipeline = defaultPipeline
	}
	return te
}

// Execute builds target. It never panics on bad input; every problem is
// reported through the result's Status and Error.
func (te *TargetExecutor) Execute(ctx context.Context, target models.Target) models.TargetResult {
	start := time.Now()
	result := models.TargetResult{Target: target, DryRun: te.dryRun}
	finish := func(status string, err error) models.TargetResult {
		result.Status = status
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	if err := ctx.Err(); err != nil {
		return finish(models.StatusFailed, err)
	}

	input, err := te.Load(target.Src)
	if input != nil {
		result.Sources = input.Sources
		result.Missing = input.Missing
	}
	if err != nil {
		return finish(models.StatusFailed, err)
	}
	if len(input.Sources) == 0 {
		return finish(models.StatusSkipped, nil)
	}

	doc := input.Doc
	out, err := te.pipeline.Run(doc, input.SrcPath, target.Options)
	if err != nil {
		var nf *TagNotFoundError
		if errors.As(err, &nf) && allowErrors(target.Options) {
			return finish(models.StatusNotFound, err)
		}
		return finish(models.StatusFailed, err)
	}
	result.Bytes = len(out)

	if te.dryRun {
		if te.showDiff {
			result.Diff = Diff(target.Dest, doc, out)
		}
		if te.skipUnchanged {
			if same, _ := filelock.SameContent(target.Dest, []byte(out)); same {
				return finish(models.StatusUnchanged, nil)
			}
		}
		return finish(models.StatusWritten, nil)
	}

	written, err := filelock.WriteFile(ctx, target.Dest, []byte(out), te.skipUnchanged)
	if err != nil {
		return finish(models.StatusFailed, err)
	}
	if !written {
		return finish(models.StatusUnchanged, nil)
	}
	return finish(models.StatusWritten, nil)
}

// Input is the joined content of a target's sources.
type Input struct {
	Doc     string   // Sources joined with the linefeed
	SrcPath string   // Absolute path of the first source
	Sources []string // Sources read, in join order
	Missing []string // Sources that do not exist
}

// Load expands patterns and reads the sources they name. Each missing file
// is logged as a warning and skipped. An Input without Sources means there
// was nothing to read.
func (te *TargetExecutor) Load(patterns []string) (*Input, error) {
	paths, err := fileutil.ExpandSources(te.baseDir, patterns)
	if err != nil {
		return nil, err
	}

	input := &Input{}
	var parts []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if (err != nil && errors.Is(err, fs.ErrNotExist)) || (err == nil && info.IsDir()) {
			te.warn(fmt.Sprintf("Source file %q not found.", te.display(p)))
			input.Missing = append(input.Missing, p)
			continue
		}
		if err != nil {
			return input, fmt.Errorf("failed to stat source %s: %w", p, err)
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return input, fmt.Errorf("failed to read source %s: %w", p, err)
		}
		if input.SrcPath == "" {
			if input.SrcPath, err = filepath.Abs(p); err != nil {
				return input, fmt.Errorf("failed to resolve source %s: %w", p, err)
			}
		}
		parts = append(parts, string(data))
		input.Sources = append(input.Sources, p)
	}

	input.Doc = strings.Join(parts, te.linefeed)
	return input, nil
}

func allowErrors(opts models.Options) bool {
	return opts.Pick != nil && opts.Pick.AllowErrors
}

func (te *TargetExecutor) warn(msg string) {
	if te.logger != nil {
		te.logger.LogWarn(msg)
	}
}

// display shortens p to the form it was configured in.
func (te *TargetExecutor) display(p string) string {
	if te.baseDir == "" || !filepath.IsAbs(te.baseDir) {
		return p
	}
	rel, err := filepath.Rel(te.baseDir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}
