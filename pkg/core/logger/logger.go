//go:build !logless

// Package logger provides the process-wide structured logger used by every
// core package. It is a thin zerolog wrapper: callers import the package and
// call logger.Log.Debug()/logger.Log.Error()/... the same way the rest of the
// codebase does.
package logger

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Log is the process-wide logger. Level defaults to Info and drops to Debug
// when DEBUG is set in the environment (spec.md §6).
var Log = zlog.With().
	Str("component", component()).
	Caller().
	Logger().
	Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func component() string {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		return name
	}
	return "inferlite"
}
