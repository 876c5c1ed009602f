package ews

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// Logger is the logger used by objects which aren't bound to a service, and
// the default logger of new services.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	Level(zerolog.WarnLevel)
