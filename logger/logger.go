package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

var once sync.Once
var Log zerolog.Logger

func configureLogger(out io.Writer) {
	zerolog.TimeFieldFormat = timeFormat

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
	}

	Log = zerolog.New(output).With().Timestamp().Logger()
}

// GetLoggerConfigured returns the process logger, setting the global level on first use.
// Later calls return the same logger and leave the level alone.
func GetLoggerConfigured(level zerolog.Level) *zerolog.Logger {
	once.Do(func() {
		configureLogger(os.Stdout)
		zerolog.SetGlobalLevel(level)
	})
	return &Log
}

func GetLogger() *zerolog.Logger {
	once.Do(func() {
		configureLogger(os.Stdout)
	})
	return &Log
}

// New builds a logger that is not shared, for tests and embedding.
// Writes to out are serialized, so out need not be safe for concurrent use.
func New(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(out), TimeFormat: timeFormat, NoColor: true}).
		Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a config string to a level; an empty string is info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(s)
}
