// Package logging provides the structured logger threaded through the
// takeoff pipeline. There is no package-level singleton logger: every
// stage receives a *Logger via constructor argument, and every call
// site carries at least a request_id field so a caller can correlate
// one Analyze() run's lines.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Entry so call sites attach stage/context
// fields without caring about the underlying sink.
type Logger struct {
	*logrus.Entry
}

// New creates a root Logger writing JSON lines to w (or os.Stdout if
// w is nil), tagged with requestID.
func New(w io.Writer, requestID string) *Logger {
	if w == nil {
		w = os.Stdout
	}
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{Entry: base.WithField("request_id", requestID)}
}

// Stage returns a child Logger tagged with the pipeline stage name.
func (l *Logger) Stage(name string) *Logger {
	return &Logger{Entry: l.Entry.WithField("stage", name)}
}

// Discard returns a Logger that writes nowhere, for tests.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{Entry: base.WithField("request_id", "test")}
}
