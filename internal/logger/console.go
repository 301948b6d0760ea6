// Package logger provides logging implementations for preproc runs.
//
// Loggers report per-target progress and the build summary. Implementations
// are thread-safe and write to the console, a per-run log file, or both.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/preproc/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is enabled when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	scheme      *colorScheme
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
		scheme:      newColorScheme(),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// NO_COLOR disables colors even on a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
// Format: "[HH:MM:SS] [LEVEL] <message>"
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	label := cl.paint(cl.scheme.level(level), level)
	cl.write(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), label, message))
}

// LogTargetStart logs the start of a target at DEBUG level.
// Format: "[HH:MM:SS] Processing <name> -> <dest>"
func (cl *ConsoleLogger) LogTargetStart(target models.Target) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	label := cl.paint(cl.scheme.label, target.Label())
	cl.write(fmt.Sprintf("[%s] Processing %s\n", timestamp(), label))
}

// LogTargetResult logs the outcome of a target at INFO level, or ERROR for a
// failure. The wording for a written file is: File "<dest>" created.
func (cl *ConsoleLogger) LogTargetResult(result models.TargetResult) {
	if cl.writer == nil {
		return
	}
	level := "info"
	if result.Failed() {
		level = "error"
	}
	if !cl.shouldLog(level) {
		return
	}

	message := cl.paint(cl.scheme.status(result.Status), describeResult(result))
	output := fmt.Sprintf("[%s] %s\n", timestamp(), message)
	if result.Diff != "" {
		output += result.Diff
		if !strings.HasSuffix(result.Diff, "\n") {
			output += "\n"
		}
	}
	cl.write(output)
}

// describeResult renders a target result as one line of text.
func describeResult(result models.TargetResult) string {
	dest := result.Target.Dest
	switch result.Status {
	case models.StatusWritten:
		if result.DryRun {
			return fmt.Sprintf("File %q would be created (%d bytes, dry run).", dest, result.Bytes)
		}
		return fmt.Sprintf("File %q created.", dest)
	case models.StatusUnchanged:
		return fmt.Sprintf("File %q unchanged.", dest)
	case models.StatusSkipped:
		return fmt.Sprintf("Target %s skipped: no source files.", result.Target.Name)
	case models.StatusNotFound:
		return fmt.Sprintf("Target %s: %v (allowed, %q not written).", result.Target.Name, result.Error, dest)
	case models.StatusFailed:
		return fmt.Sprintf("Target %s failed: %v", result.Target.Name, result.Error)
	default:
		return fmt.Sprintf("Target %s: %s", result.Target.Name, result.Status)
	}
}

// LogProgress logs how many targets have finished at DEBUG level.
// Format: "[HH:MM:SS] Progress: [=====     ] 5/10 (50%)"
func (cl *ConsoleLogger) LogProgress(done, total int) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	pb := NewProgressBar(total, 10, cl.colorOutput)
	pb.Update(done)
	cl.write(fmt.Sprintf("[%s] Progress: %s\n", timestamp(), pb.Render()))
}

// LogSummary logs the build summary at INFO level.
func (cl *ConsoleLogger) LogSummary(result models.BuildResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	ts := timestamp()
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, cl.paint(cl.scheme.header, "=== Build Summary ==="))
	fmt.Fprintf(&b, "[%s] Total targets: %d\n", ts, result.TotalTargets)
	fmt.Fprintf(&b, "[%s] %s\n", ts, cl.paint(cl.scheme.success, fmt.Sprintf("Written: %d", result.Written)))
	fmt.Fprintf(&b, "[%s] Unchanged: %d\n", ts, result.Unchanged)
	fmt.Fprintf(&b, "[%s] Skipped: %d\n", ts, result.Skipped)
	if result.NotFound > 0 {
		fmt.Fprintf(&b, "[%s] %s\n", ts, cl.paint(cl.scheme.warn, fmt.Sprintf("Tag not found: %d", result.NotFound)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(&b, "[%s] %s\n", ts, cl.paint(cl.scheme.fail, fmt.Sprintf("Failed: %d", result.Failed)))
	} else {
		fmt.Fprintf(&b, "[%s] Failed: 0\n", ts)
	}
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(result.Duration))

	if len(result.FailedTargets) > 0 {
		fmt.Fprintf(&b, "[%s] Failed targets:\n", ts)
		for _, failed := range result.FailedTargets {
			fmt.Fprintf(&b, "[%s]   - %s: %v\n", ts, cl.paint(cl.scheme.fail, failed.Target.Label()), failed.Error)
		}
	}

	cl.write(b.String())
}

func (cl *ConsoleLogger) paint(c *color.Color, s string) string {
	if !cl.colorOutput {
		return s
	}
	return c.Sprint(s)
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	io.WriteString(cl.writer, s)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "120ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string) {}
func (n *NoOpLogger) LogDebug(message string) {}
func (n *NoOpLogger) LogInfo(message string) {}
func (n *NoOpLogger) LogWarn(message string) {}
func (n *NoOpLogger) LogError(message string) {}
func (n *NoOpLogger) LogTargetStart(target models.Target) {}
func (n *NoOpLogger) LogTargetResult(result models.TargetResult) {}
func (n *NoOpLogger) LogProgress(done, total int) {}
func (n *NoOpLogger) LogSummary(result models.BuildResult) {}
