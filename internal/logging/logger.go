package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns the process logger writing to stdout.
func New(level, prefix string) *log.Logger {
	return NewWithWriter(os.Stdout, level, prefix)
}

func NewWithWriter(w io.Writer, level, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
		Prefix:          prefix,
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps debug|info|warn|error to a level; anything else is info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "err", "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Discard is a logger for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
