// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"todosync/internal/config"
)

// Log file rotation limits.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// New returns a text logger writing to errOut, and additionally to a
// rotating file when cfg.LogFile is set. The level is error, debug with
// cfg.Debug, and LOG_LEVEL overrides both. Close the returned closer on exit.
func New(cfg *config.Config, errOut io.Writer) (*logrus.Logger, io.Closer) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: cfg.LogFile == "",
		FullTimestamp:    true,
	})

	log.SetLevel(logrus.ErrorLevel)
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			log.SetLevel(lvl)
		}
	}

	var closer io.Closer = nopCloser{}
	out := errOut
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		out = io.MultiWriter(errOut, file)
		closer = file
	}
	log.SetOutput(out)

	return log, closer
}

// Discard returns an entry that drops everything; used where no logger is wired.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
