package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var root zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	level := zerolog.DebugLevel
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(l)); err == nil {
			level = parsed
		}
	} else if os.Getenv("ENVIRONMENT") == "production" {
		level = zerolog.InfoLevel
	}
	root = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// New returns a child logger tagged with the given scope, one per
// handler or client.
func New(scope string) zerolog.Logger {
	return root.With().Str("scope", scope).Logger()
}
