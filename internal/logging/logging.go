// Package logging wraps logrus into the small leveled logger threaded
// through every component via config.Config, toggled between
// logrus.DebugLevel and logrus.InfoLevel by a --verbose flag.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface every component receives. No component
// reaches for a package-level logger or os.Stdout directly (Design Note
// "Globals").
type Logger struct {
	entry *logrus.Entry
}

// New creates a Logger writing to w (os.Stderr when w is nil), at Debug
// level when verbose is true and Info level otherwise.
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// Discard returns a Logger that drops every message, for use in tests and
// library callers that don't want output.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// With returns a child Logger carrying additional structured fields, e.g.
// the dist name/version currently being processed.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
