package cli

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// newLogger returns a text logger on w at the configured level. verbose
// forces debug output; an unknown level falls back to info.
func newLogger(w io.Writer, level string, verbose bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	if err != nil && level != "" {
		logger.WithField("log_level", level).Warn("unknown log level, using info")
	}
	return logger
}
