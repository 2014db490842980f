// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger for the environment: JSON lines in
// production, coloured text elsewhere. LOG_LEVEL overrides the default
// info level.
func New(env string) *logrus.Logger {
	return newLogger(env, os.Getenv("LOG_LEVEL"), os.Stdout)
}

func newLogger(env, level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	switch strings.ToLower(env) {
	case "prod", "production":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
