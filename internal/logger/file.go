package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/preproc/internal/models"
)

// FileLogger logs run events to files in a log directory.
// It creates timestamped per-run log files, per-target detailed logs,
// and maintains a latest.log symlink pointing to the most recent run.
// Every run gets a build ID that is written into the run log header.
type FileLogger struct {
	logDir     string
	runLog     *os.File
	runFile    string
	targetsDir string
	logLevel   string
	buildID    string
	mu         sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir at the given level.
// It creates the log directory if it doesn't exist, opens a timestamped
// run log file, and creates/updates the latest.log symlink.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	targetsDir := filepath.Join(logDir, "targets")
	if err := os.MkdirAll(targetsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create targets directory: %w", err)
	}

	// Timestamped filename: run-YYYYMMDD-HHMMSS.log, suffixed when two runs
	// start within the same second
	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))
	for i := 2; ; i++ {
		if _, err := os.Stat(runFile); os.IsNotExist(err) {
			break
		}
		runFile = filepath.Join(logDir, fmt.Sprintf("run-%s-%d.log", stamp, i))
	}

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:     logDir,
		runLog:     file,
		runFile:    runFile,
		targetsDir: targetsDir,
		logLevel:   normalizeLogLevel(logLevel),
		buildID:    uuid.NewString(),
	}

	logger.writeRunLog("=== preproc Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Build ID: %s\n", logger.buildID))
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// BuildID returns the identifier of this run.
func (fl *FileLogger) BuildID() string {
	return fl.buildID
}

// RunFile returns the path of the run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

// shouldLog checks if a message at the given level should be logged.
func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogTargetStart logs the start of a target at DEBUG level.
func (fl *FileLogger) LogTargetStart(target models.Target) {
	if !fl.shouldLog("debug") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Processing %s\n", timestamp(), target.Label()))
}

// LogTargetResult writes the outcome to the run log and appends a detailed
// entry to targets/<name>.log.
func (fl *FileLogger) LogTargetResult(result models.TargetResult) {
	level := "info"
	if result.Failed() {
		level = "error"
	}
	if fl.shouldLog(level) {
		fl.writeRunLog(fmt.Sprintf("[%s] %s\n", timestamp(), describeResult(result)))
	}

	if err := fl.writeTargetLog(result); err != nil {
		fl.writeRunLog(fmt.Sprintf("[%s] [WARN] %v\n", timestamp(), err))
	}
}

func (fl *FileLogger) writeTargetLog(result models.TargetResult) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	path := filepath.Join(fl.targetsDir, result.Target.Name+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open target log file: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s (build %s) ===\n", result.Target.Label(), fl.buildID)
	fmt.Fprintf(&b, "Status: %s\n", result.Status)
	fmt.Fprintf(&b, "Duration: %s\n", formatDuration(result.Duration))
	if result.DryRun {
		b.WriteString("Dry run: true\n")
	}
	if len(result.Sources) > 0 {
		fmt.Fprintf(&b, "Sources:\n  %s\n", strings.Join(result.Sources, "\n  "))
	}
	if len(result.Missing) > 0 {
		fmt.Fprintf(&b, "Missing:\n  %s\n", strings.Join(result.Missing, "\n  "))
	}
	if result.Status == models.StatusWritten {
		fmt.Fprintf(&b, "Bytes: %d\n", result.Bytes)
	}
	if result.Error != nil {
		fmt.Fprintf(&b, "Error:\n%v\n", result.Error)
	}
	fmt.Fprintf(&b, "Completed at: %s\n\n", time.Now().Format(time.RFC3339))

	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write target log: %w", err)
	}
	return nil
}

// LogProgress is a no-op for the file logger.
// Progress is displayed on console but not written to log files.
func (fl *FileLogger) LogProgress(done, total int) {}

// LogSummary logs the build summary at INFO level.
func (fl *FileLogger) LogSummary(result models.BuildResult) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	status := "SUCCESS"
	if result.Failed > 0 {
		status = "FAILED"
		if result.Failed < result.TotalTargets {
			status = "PARTIAL"
		}
	}

	message := fmt.Sprintf(
		"\n[%s] === BUILD SUMMARY ===\n"+
			"[%s] Total targets: %d\n"+
			"[%s] Written:       %d\n"+
			"[%s] Unchanged:     %d\n"+
			"[%s] Skipped:       %d\n"+
			"[%s] Not found:     %d\n"+
			"[%s] Failed:        %d\n"+
			"[%s] Total time:    %s\n"+
			"[%s] Status:        %s\n"+
			"[%s] Completed at:  %s\n",
		ts,
		ts, result.TotalTargets,
		ts, result.Written,
		ts, result.Unchanged,
		ts, result.Skipped,
		ts, result.NotFound,
		ts, result.Failed,
		ts, formatDuration(result.Duration),
		ts, status,
		ts, time.Now().Format(time.RFC3339),
	)
	fl.writeRunLog(message)
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
