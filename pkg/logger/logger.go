package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// defaultLogger is the process-wide logger stored atomically.
var defaultLogger atomic.Pointer[charm.Logger]

func init() {
	defaultLogger.Store(New(os.Stderr, charm.InfoLevel))
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level charm.Level) *charm.Logger {
	return charm.NewWithOptions(w, charm.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "bomplanner",
	})
}

// Default returns the global logger.
func Default() *charm.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the global logger. Nil is ignored.
func SetDefault(l *charm.Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// ParseLevel accepts debug, info, warn, error and fatal in any case. Empty means info.
func ParseLevel(raw string) (charm.Level, error) {
	if strings.TrimSpace(raw) == "" {
		return charm.InfoLevel, nil
	}
	level, err := charm.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return charm.InfoLevel, errors.Wrapf(err, "invalid log level %q", raw)
	}
	return level, nil
}

// Configure installs a new default logger writing to w at the named level.
func Configure(w io.Writer, level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}
	SetDefault(New(w, parsed))
	return nil
}

func Debug(msg interface{}, keyvals ...interface{}) { Default().Debug(msg, keyvals...) }

func Info(msg interface{}, keyvals ...interface{}) { Default().Info(msg, keyvals...) }

func Warn(msg interface{}, keyvals ...interface{}) { Default().Warn(msg, keyvals...) }

func Error(msg interface{}, keyvals ...interface{}) { Default().Error(msg, keyvals...) }
