// Package log holds the logrus setup shared by the navigator binaries and the
// adapter that routes badger's internal logging through logrus.
package log

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// BadgerLogrusAdapter implements badger.Logger on top of a logrus entry.
// Badger reports routine compaction and replay progress at Info; with Quiet set
// those messages are demoted to Debug so they do not drown out navigator output.
type BadgerLogrusAdapter struct {
	*logrus.Entry
	Quiet bool
}

// NewBadgerLogrusAdapter creates an adapter that demotes badger Info messages to Debug.
func NewBadgerLogrusAdapter(entry *logrus.Entry) *BadgerLogrusAdapter {
	return &BadgerLogrusAdapter{Entry: entry, Quiet: true}
}

func (l *BadgerLogrusAdapter) Errorf(f string, v ...interface{})   { l.Entry.Errorf(trimNewline(f), v...) }
func (l *BadgerLogrusAdapter) Warningf(f string, v ...interface{}) { l.Entry.Warnf(trimNewline(f), v...) }
func (l *BadgerLogrusAdapter) Debugf(f string, v ...interface{})   { l.Entry.Debugf(trimNewline(f), v...) }

func (l *BadgerLogrusAdapter) Infof(f string, v ...interface{}) {
	if l.Quiet {
		l.Entry.Debugf(trimNewline(f), v...)
		return
	}
	l.Entry.Infof(trimNewline(f), v...)
}

// Badger format strings end with "\n"; logrus adds its own.
func trimNewline(f string) string {
	return strings.TrimSuffix(f, "\n")
}

// NewLogger builds the process logger: text output with millisecond timestamps.
// An unparseable level falls back to info and is reported as a warning.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)

	if level == "" {
		return logger
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info': %v", level, err)
		return logger
	}
	logger.SetLevel(parsed)
	return logger
}

// Discard returns an entry that drops everything. Used by tests and library callers without a logger.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
