package logger

import "github.com/harrison/preproc/internal/models"

// Sink is the set of methods every logger in this package implements.
type Sink interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogTargetStart(target models.Target)
	LogTargetResult(result models.TargetResult)
	LogProgress(done, total int)
	LogSummary(result models.BuildResult)
}

// MultiLogger forwards every call to each of its loggers in order.
type MultiLogger struct {
	sinks []Sink
}

// NewMultiLogger creates a MultiLogger. Nil loggers are dropped.
func NewMultiLogger(sinks ...Sink) *MultiLogger {
	m := &MultiLogger{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, s := range m.sinks {
		s.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, s := range m.sinks {
		s.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, s := range m.sinks {
		s.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, s := range m.sinks {
		s.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, s := range m.sinks {
		s.LogError(message)
	}
}

func (m *MultiLogger) LogTargetStart(target models.Target) {
	for _, s := range m.sinks {
		s.LogTargetStart(target)
	}
}

func (m *MultiLogger) LogTargetResult(result models.TargetResult) {
	for _, s := range m.sinks {
		s.LogTargetResult(result)
	}
}

func (m *MultiLogger) LogProgress(done, total int) {
	for _, s := range m.sinks {
		s.LogProgress(done, total)
	}
}

func (m *MultiLogger) LogSummary(result models.BuildResult) {
	for _, s := range m.sinks {
		s.LogSummary(result)
	}
}
