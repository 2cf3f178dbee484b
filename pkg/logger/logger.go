// Package logger constructs the process-wide structured logger. The slog API
// is used everywhere; charmbracelet/log provides the handler so terminal
// output matches the CLI's styling.
package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a slog.Logger writing to stderr. Debug enables debug-level
// records and caller reporting.
func New(debug bool) *slog.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		ReportCaller:    debug,
	})
	return slog.New(handler)
}
