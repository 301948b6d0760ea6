package executor

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/harrison/preproc/internal/filelock"
	"github.com/harrison/preproc/internal/models"
)

// Report is the JSON form of a build result.
type Report struct {
	BuildID    string         `json:"build_id,omitempty"`
	FinishedAt time.Time      `json:"finished_at"`
	DurationMS int64          `json:"duration_ms"`
	Succeeded  bool           `json:"succeeded"`
	Totals     map[string]int `json:"totals"`
	Targets    []TargetReport `json:"targets"`
}

// TargetReport is the JSON form of a target result.
type TargetReport struct {
	Name       string   `json:"name"`
	Dest       string   `json:"dest"`
	Status     string   `json:"status"`
	Sources    []string `json:"sources"`
	Missing    []string `json:"missing,omitempty"`
	Bytes      int      `json:"bytes"`
	DryRun     bool     `json:"dry_run,omitempty"`
	DurationMS int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// NewReport converts a build result.
func NewReport(result *models.BuildResult, finishedAt time.Time) *Report {
	report := &Report{
		BuildID:    result.BuildID,
		FinishedAt: finishedAt.UTC(),
		DurationMS: result.Duration.Milliseconds(),
		Succeeded:  result.Succeeded(),
		Totals: map[string]int{
			"targets":              result.TotalTargets,
			models.StatusWritten:   result.Written,
			models.StatusUnchanged: result.Unchanged,
			models.StatusSkipped:   result.Skipped,
			models.StatusNotFound:  result.NotFound,
			models.StatusFailed:    result.Failed,
		},
		Targets: make([]TargetReport, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		tr := TargetReport{
			Name:       res.Target.Name,
			Dest:       res.Target.Dest,
			Status:     res.Status,
			Sources:    res.Sources,
			Missing:    res.Missing,
			Bytes:      res.Bytes,
			DryRun:     res.DryRun,
			DurationMS: res.Duration.Milliseconds(),
		}
		if tr.Sources == nil {
			tr.Sources = []string{}
		}
		if res.Error != nil {
			tr.Error = res.Error.Error()
		}
		report.Targets = append(report.Targets, tr)
	}
	return report
}

// WriteReport writes the JSON report of result to path.
func WriteReport(path string, result *models.BuildResult) error {
	data, err := json.MarshalIndent(NewReport(result, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
