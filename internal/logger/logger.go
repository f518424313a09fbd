package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the root logger on stderr and installs it as the global logger
// so packages can use github.com/rs/zerolog/log directly.
func Setup(dev bool) zerolog.Logger {
	logger := New(os.Stderr, dev)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return logger
}

// New writes JSON to out, or console output at debug level in dev mode.
func New(out io.Writer, dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	if dev {
		out = zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller()
	if dev {
		logger = logger.Stack()
	}

	return logger.Logger()
}
