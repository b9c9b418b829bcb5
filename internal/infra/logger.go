package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger. Development runs get pretty console
// output at debug level; everything else emits structured JSON at info level
// so render and poll events stay machine-parseable.
func NewLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	var out io.Writer = os.Stdout
	if appEnv == "development" {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "cinefibo").
		Logger()
}

// Logger aliases zerolog.Logger so the rest of the codebase depends on the
// logging contract without importing the third-party module directly.
type Logger = zerolog.Logger
