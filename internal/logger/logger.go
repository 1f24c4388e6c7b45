// Package logger prints diagnostic lines for a gridscrape run.
// Nothing is written unless verbose mode is enabled with --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput sets the writer for log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a debug line.
func Debug(format string, args ...any) { logf("[DEBUG] ", format, args...) }

// Info prints an informational line.
func Info(format string, args ...any) { logf("[INFO] ", format, args...) }

// Warn prints a warning line.
func Warn(format string, args ...any) { logf("[WARN] ", format, args...) }

// Section prints a stage header, e.g. "=== fetch ===".
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "=== %s ===\n", name)
	}
}
