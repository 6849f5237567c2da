package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logFile *os.File

// setupLogging writes human-readable logs to stderr. Under systemd
// (JOURNAL_STREAM set) the file tee is skipped since journald keeps the logs.
func setupLogging(stderr io.Writer, verbose bool, path string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	consoleWriter := zerolog.ConsoleWriter{Out: stderr}
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd || path == "" {
		log.Logger = log.Output(consoleWriter)
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Logger = log.Output(consoleWriter)
		log.Warn().Err(err).Str("logFile", path).Msg("failed to open log file")
		return
	}
	logFile = f

	fileWriter := zerolog.ConsoleWriter{Out: f, NoColor: true}
	log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
	log.Debug().Str("logFile", path).Msg("logging to file")
}

func closeLogFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
