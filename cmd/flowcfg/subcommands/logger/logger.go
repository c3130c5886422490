package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Null returns a logger which discards everything.
func Null() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Default returns a logger writing to stderr.
func Default() *logrus.Logger {
	return New(os.Stderr, false)
}

// New returns a logger writing to w, without timestamps.
//
// When verbose, debug messages are also written.
func New(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
