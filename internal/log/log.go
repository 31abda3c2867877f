package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	charm "github.com/charmbracelet/log"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	logger     *charm.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		logger = charm.NewWithOptions(os.Stderr, charm.Options{
			Level:           charm.InfoLevel,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339Nano,
			Prefix:          "plancal",
		})
	})
}

// SetLevel changes the minimum level. Unknown levels fall back to INFO.
func SetLevel(l Level) {
	initLogger()
	logger.SetLevel(toCharm(l))
}

// ParseLevel maps a config string such as "debug" onto a Level.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	initLogger()
	logger.SetOutput(w)
}

func Debug(msg string, kv ...any) {
	initLogger()
	logger.Debug(msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger()
	logger.Info(msg, kv...)
}

func Warn(msg string, kv ...any) {
	initLogger()
	logger.Warn(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logger.Error(msg, extended...)
}

func toCharm(l Level) charm.Level {
	switch l {
	case LevelDebug:
		return charm.DebugLevel
	case LevelWarn:
		return charm.WarnLevel
	case LevelError:
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}
