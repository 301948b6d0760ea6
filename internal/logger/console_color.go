package logger

import (
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/preproc/internal/models"
)

// colorScheme defines consistent colors for log output.
// Green: written destinations
// Red: failures
// Yellow: warnings and allowed misses
// Cyan: labels and identifiers
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	muted   *color.Color
	header  *color.Color
	plain   *color.Color
}

// newColorScheme creates the standard color scheme.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		muted:   color.New(color.FgHiBlack),
		header:  color.New(color.Bold),
		plain:   color.New(color.Reset),
	}
}

// level returns the color of a log level label.
func (s *colorScheme) level(level string) *color.Color {
	switch strings.ToUpper(level) {
	case "TRACE":
		return s.muted
	case "DEBUG":
		return s.label
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return s.warn
	case "ERROR":
		return s.fail
	default:
		return s.plain
	}
}

// status returns the color of a target status.
func (s *colorScheme) status(status string) *color.Color {
	switch status {
	case models.StatusWritten:
		return s.success
	case models.StatusUnchanged, models.StatusSkipped:
		return s.muted
	case models.StatusNotFound:
		return s.warn
	case models.StatusFailed:
		return s.fail
	default:
		return s.plain
	}
}
