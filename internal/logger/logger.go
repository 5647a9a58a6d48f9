// Package logger writes the --verbose trace of the SearchBox CLI: query
// parsing, backend calls, summary streaming and background tasks. Nothing
// is written unless verbose mode is on.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level tags a trace line.
type Level string

// Trace levels.
const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
)

var (
	mu      sync.Mutex
	verbose bool
	out     io.Writer = os.Stderr
)

// SetVerbose turns tracing on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether tracing is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects the trace. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	out = w
	mu.Unlock()
}

// Debug traces request-level detail.
func Debug(format string, args ...any) { emit(LevelDebug, format, args...) }

// Info traces a notable step.
func Info(format string, args ...any) { emit(LevelInfo, format, args...) }

// Warn traces a recoverable failure, such as a cache write that did not
// persist or a backend status check that timed out.
func Warn(format string, args ...any) { emit(LevelWarn, format, args...) }

// Section starts a titled block in the trace.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(out, "\n=== %s ===\n", name)
	}
}

func emit(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(out, "[%s] %s\n", level, strings.TrimRight(msg, "\n"))
}
