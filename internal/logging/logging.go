// Package logging builds the leveled logger shared by the store and the CLI.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

const Prefix = "associate"

// New returns a text logger writing to w at the named level
// (debug, info, warn, error, fatal). An empty level means warn.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.WarnLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := log.ParseLevel(strings.ToLower(s))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       log.TextFormatter,
		ReportTimestamp: lvl <= log.DebugLevel,
		Prefix:          Prefix,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
