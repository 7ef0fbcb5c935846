package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger
type Logger struct {
	*logrus.Logger
}

// New creates a new logger instance writing to stderr, so log lines never
// interleave with the interactive prompts on stdout.
func New(level string) *Logger {
	return NewWithOutput(level, "text", os.Stderr)
}

// NewWithOutput creates a logger with an explicit format ("json" or "text")
// and destination.
func NewWithOutput(level, format string, output io.Writer) *Logger {
	log := logrus.New()
	log.SetOutput(output)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// Set log level
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Logger: log}
}
