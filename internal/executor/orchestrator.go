package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/harrison/preproc/internal/models"
)

// Logger defines the interface for logging build progress and results.
type Logger interface {
	LogWarn(message string)
	LogTargetStart(target models.Target)
	LogTargetResult(result models.TargetResult)
	LogProgress(done, total int)
	LogSummary(result models.BuildResult)
}

// TargetRunner builds a single target.
type TargetRunner interface {
	Execute(ctx context.Context, target models.Target) models.TargetResult
}

// Orchestrator runs targets concurrently, handles graceful shutdown, and
// aggregates results.
type Orchestrator struct {
	runner         TargetRunner
	logger         Logger
	maxConcurrency int
	buildID        string
	handleSignals  bool
}

// NewOrchestrator creates a new Orchestrator instance.
// The logger parameter is optional and can be nil. A maxConcurrency of 0 or
// less runs every target at once.
func NewOrchestrator(runner TargetRunner, logger Logger, maxConcurrency int) *Orchestrator {
	if runner == nil {
		panic("target runner cannot be nil")
	}

	return &Orchestrator{
		runner:         runner,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		handleSignals:  true,
	}
}

// SetBuildID sets the identifier recorded in the build result.
func (o *Orchestrator) SetBuildID(id string) {
	o.buildID = id
}

// SetSignalHandling toggles SIGINT/SIGTERM handling during Run.
func (o *Orchestrator) SetSignalHandling(enabled bool) {
	o.handleSignals = enabled
}

// Run builds targets and returns the aggregated result. The error is a
// *BuildError when any target failed, joined with the context error when the
// run was interrupted. Results keep the order of targets.
func (o *Orchestrator) Run(ctx context.Context, targets []models.Target) (*models.BuildResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if o.handleSignals {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		go func() {
			select {
			case <-sigChan:
				fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	startTime := time.Now()
	results := o.executeTargets(ctx, targets)
	duration := time.Since(startTime)

	buildResult := o.aggregateResults(results, duration)

	if o.logger != nil {
		o.logger.LogSummary(*buildResult)
	}

	var err error
	if buildResult.Failed > 0 {
		buildErr := &BuildError{TotalTargets: buildResult.TotalTargets}
		for _, res := range buildResult.FailedTargets {
			buildErr.Add(NewTargetError(res.Target.Name, res.Target.Dest, res.Error))
		}
		err = buildErr
	}
	if interrupted(ctx, results) {
		err = errors.Join(ctx.Err(), err)
	}
	return buildResult, err
}

// executeTargets runs targets under a semaphore of maxConcurrency slots.
// Targets not started before ctx is done are reported as failed.
func (o *Orchestrator) executeTargets(ctx context.Context, targets []models.Target) []models.TargetResult {
	limit := o.maxConcurrency
	if limit <= 0 || limit > len(targets) {
		limit = len(targets)
	}
	if limit == 0 {
		return nil
	}

	type indexedResult struct {
		index  int
		result models.TargetResult
	}

	semaphore := make(chan struct{}, limit)
	resultsCh := make(chan indexedResult, len(targets))
	var wg sync.WaitGroup

launch:
	for i, target := range targets {
		select {
		case <-ctx.Done():
			break launch
		case semaphore <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-semaphore
			break launch
		}

		wg.Add(1)
		go func(index int, target models.Target) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if o.logger != nil {
				o.logger.LogTargetStart(target)
			}
			resultsCh <- indexedResult{index: index, result: o.runner.Execute(ctx, target)}
		}(i, target)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	results := make([]models.TargetResult, len(targets))
	started := make([]bool, len(targets))
	done := 0
	for r := range resultsCh {
		results[r.index] = r.result
		started[r.index] = true
		done++
		if o.logger != nil {
			o.logger.LogTargetResult(r.result)
			o.logger.LogProgress(done, len(targets))
		}
	}

	for i, ok := range started {
		if !ok {
			results[i] = models.TargetResult{
				Target: targets[i],
				Status: models.StatusFailed,
				Error:  fmt.Errorf("not started: %w", ctx.Err()),
			}
		}
	}
	return results
}

// aggregateResults folds results into a BuildResult, in target order.
func (o *Orchestrator) aggregateResults(results []models.TargetResult, duration time.Duration) *models.BuildResult {
	buildResult := &models.BuildResult{
		BuildID:       o.buildID,
		Duration:      duration,
		Results:       []models.TargetResult{},
		FailedTargets: []models.TargetResult{},
	}
	for _, res := range results {
		buildResult.Add(res)
	}
	return buildResult
}

// interrupted reports whether ctx was cancelled while targets were pending.
func interrupted(ctx context.Context, results []models.TargetResult) bool {
	if ctx.Err() == nil {
		return false
	}
	for _, res := range results {
		if res.Failed() && IsCancelled(res.Error) {
			return true
		}
	}
	return false
}
