package models

import "time"

// Target execution status constants
const (
	StatusWritten   = "written"   // Destination written
	StatusUnchanged = "unchanged" // Output matched the existing destination
	StatusSkipped   = "skipped"   // No source file was accepted
	StatusNotFound  = "not_found" // Pick found no region and errors were allowed
	StatusFailed    = "failed"    // Target failed
)

// TargetResult represents the result of executing a single target
type TargetResult struct {
	Target   Target        // The target that was executed
	Status   string        // One of the Status constants
	Sources  []string      // Accepted source files, in join order
	Missing  []string      // Source files that did not exist
	Bytes    int           // Size of the produced output
	Diff     string        // Dry-run diff of input and output, when requested
	DryRun   bool          // Nothing was written
	Error    error         // Error if execution failed
	Duration time.Duration // Time taken to execute
}

// Failed returns true if the target counts as a failure.
func (r *TargetResult) Failed() bool {
	return r.Status == StatusFailed
}

// BuildResult represents the aggregate result of a run
type BuildResult struct {
	BuildID       string         // Identifier shared with the run log
	TotalTargets  int            // Total number of targets
	Written       int            // Destinations written
	Unchanged     int            // Destinations left as they were
	Skipped       int            // Targets without sources
	NotFound      int            // Allowed pick misses
	Failed        int            // Failed targets
	Duration      time.Duration  // Total execution time
	Results       []TargetResult // Results in target order
	FailedTargets []TargetResult // Details of failed targets
}

// Succeeded returns true when no target failed.
func (r *BuildResult) Succeeded() bool {
	return r.Failed == 0
}

// StatusBreakdown returns the number of results per status.
func (r *BuildResult) StatusBreakdown() map[string]int {
	counts := make(map[string]int)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Add records a result and updates the counters.
func (r *BuildResult) Add(res TargetResult) {
	r.TotalTargets++
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusWritten:
		r.Written++
	case StatusUnchanged:
		r.Unchanged++
	case StatusSkipped:
		r.Skipped++
	case StatusNotFound:
		r.NotFound++
	case StatusFailed:
		r.Failed++
		r.FailedTargets = append(r.FailedTargets, res)
	}
}
