package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TagNotFoundError is returned when a pick step finds no region of its tag.
type TagNotFoundError struct {
	Tag string
}

// Error implements the error interface for TagNotFoundError.
func (e *TagNotFoundError) Error() string {
	return "Not found tag: " + e.Tag
}

// TargetError represents an error that occurred while building a target.
// It includes context about which target failed and when.
type TargetError struct {
	TargetName string    // Name of the target that failed
	Message    string    // Human-readable error message
	Err        error     // Underlying error (optional)
	Timestamp  time.Time // When the error occurred
}

// NewTargetError creates a new TargetError with the current timestamp.
func NewTargetError(name, msg string, err error) *TargetError {
	return &TargetError{
		TargetName: name,
		Message:    msg,
		Err:        err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface for TargetError.
func (e *TargetError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("target %s: %s", e.TargetName, e.Message))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *TargetError) Unwrap() error {
	return e.Err
}

// BuildError aggregates the target errors of one run.
type BuildError struct {
	TargetErrors  []*TargetError // Individual target errors
	TotalTargets  int            // Total number of targets attempted
	FailedTargets int            // Number of targets that failed
}

// Add appends a target error and increments the failed target count.
func (e *BuildError) Add(targetErr *TargetError) {
	e.TargetErrors = append(e.TargetErrors, targetErr)
	e.FailedTargets++
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("build failed: %d/%d targets failed", e.FailedTargets, e.TotalTargets))
	if len(e.TargetErrors) > 0 {
		sb.WriteString(":")
		for _, targetErr := range e.TargetErrors {
			sb.WriteString(fmt.Sprintf("\n  - %s", targetErr.Error()))
		}
	}
	return sb.String()
}

// Unwrap returns the target errors so errors.Is and errors.As can traverse them.
func (e *BuildError) Unwrap() []error {
	if len(e.TargetErrors) == 0 {
		return nil
	}
	errs := make([]error, len(e.TargetErrors))
	for i, targetErr := range e.TargetErrors {
		errs[i] = targetErr
	}
	return errs
}

// IsTagNotFound checks if the error is or wraps a TagNotFoundError.
func IsTagNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *TagNotFoundError
	return errors.As(err, &nf)
}

// IsTargetError checks if the error is or wraps a TargetError.
func IsTargetError(err error) bool {
	if err == nil {
		return false
	}
	var te *TargetError
	return errors.As(err, &te)
}

// IsCancelled checks if the error comes from an interrupted or expired run.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
