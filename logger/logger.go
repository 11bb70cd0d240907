package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the process-wide structured logger. Handlers attach request
// fields instead of printing to stderr and moving on.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

func init() {
	if os.Getenv("LOG_FORMAT") == "json" {
		Log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		Log = Log.Level(lvl)
	}
}
