package pool

import "log"

// LogLevel controls which of the package's diagnostic calls are emitted.
type LogLevel int

const (
	// LogLevelNone disables all logging.
	LogLevelNone LogLevel = iota
	// LogLevelError enables error logging only.
	LogLevelError
	// LogLevelInfo enables info and error logging.
	LogLevelInfo
	// LogLevelDebug enables all logging, including per-allocation tracing.
	LogLevelDebug
)

var currentLogLevel = LogLevelInfo

// SetLogLevel adjusts the package's logging verbosity. It is not
// re-entrant with respect to concurrent callers, matching the rest of
// this package's single-threaded contract.
func SetLogLevel(level LogLevel) {
	currentLogLevel = level
}

// logAt writes a tagged line through the standard logger once level
// clears the configured threshold; debugf/infof/errorf are thin
// wrappers naming their own tag and threshold.
func logAt(level LogLevel, tag, format string, v ...interface{}) {
	if currentLogLevel < level {
		return
	}
	log.Printf(tag+format, v...)
}

func debugf(format string, v ...interface{}) {
	logAt(LogLevelDebug, "[DEBUG] ", format, v...)
}

func infof(format string, v ...interface{}) {
	logAt(LogLevelInfo, "[INFO] ", format, v...)
}

func errorf(format string, v ...interface{}) {
	logAt(LogLevelError, "[ERROR] ", format, v...)
}
