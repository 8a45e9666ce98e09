// Package cli implements the worksite command-line interface.
//
// The CLI evaluates builder trees from a project data pack (or inline JSON
// files), writes the requested outputs, exports results to the architect
// and serves the same pipeline over HTTP. It is built using cobra and logs
// through charmbracelet/log.
//
// # Commands
//
//   - build: Evaluate a structure or tree file for one or many seeds
//   - builders: List the registered builder types
//   - ls: List the styles or structures of the project pack
//   - visualize: Draw a builder tree as DOT or SVG
//   - export: Build a seed and send its materials to the architect
//   - serve: Run the HTTP API
//   - cache: Manage the build cache
//
// # Configuration
//
// Settings are read from worksite.toml in the working directory or the XDG
// config directory. Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Built 12 seeds (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
