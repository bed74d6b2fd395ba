package utils

import (
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Logger writes leveled messages to stderr. Debug output is suppressed
// unless verbose mode is on.
type Logger struct {
	verbose atomic.Bool
	out     *log.Logger
}

var (
	defaultLogger *Logger
	loggerOnce    sync.Once
)

// GetLogger returns the shared process-wide logger.
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		defaultLogger = &Logger{out: log.New(os.Stderr, "", 0)}
	})
	return defaultLogger
}

func (l *Logger) printf(level, format string, args ...interface{}) {
	l.out.Printf("["+level+"] "+format, args...)
}

// Debug logs only when verbose mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbose.Load() {
		l.printf("DEBUG", format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.printf("INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf("WARN", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.printf("ERROR", format, args...)
}

// SetVerboseMode toggles debug output for the shared logger. Verbose
// mode also stamps each line with date, time, and caller.
func SetVerboseMode(verbose bool) {
	l := GetLogger()
	l.verbose.Store(verbose)
	if verbose {
		l.out.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	} else {
		l.out.SetFlags(0)
	}
}
