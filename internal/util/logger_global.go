package util

import (
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerMu     sync.RWMutex
)

// InitLogger installs the process logger. Calling it again replaces the
// previous logger and closes its outputs.
func InitLogger(logLevel, logFile string, debugToConsole bool) error {
	logger, err := NewLogger(logLevel, logFile, debugToConsole, FormatText)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger swaps the process logger; tests use it to capture output
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	loggerMu.Unlock()

	if previous != nil && previous != logger {
		_ = previous.Close()
	}
}

// CloseLogger flushes and closes the process logger
func CloseLogger() {
	SetLogger(nil)
}

func current() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// With returns a logger carrying fields. It never returns nil: without an
// installed logger the result discards everything.
func With(fields ...Field) LoggerInterface {
	if l := current(); l != nil {
		return l.With(fields...)
	}
	return &Logger{level: LevelError + 1, fields: map[string]interface{}{}}
}

func LogInfo(msg string) {
	if l := current(); l != nil {
		l.Info(msg)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string) {
	if l := current(); l != nil {
		l.Debug(msg)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string) {
	if l := current(); l != nil {
		l.Warn(msg)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string) {
	if l := current(); l != nil {
		l.Error(msg)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Errorf(format, args...)
	}
}
