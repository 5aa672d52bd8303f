// Package log records dispatched commands to the session log file.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Log writes structured command records. A disabled log swallows
// everything, so callers never branch.
type Log struct {
	l       *logrus.Logger
	file    afero.File
	enabled bool
}

// New opens the log file for appending. Stealth mode or an empty path
// yields a disabled log.
func New(fsys afero.Fs, path string, enabled bool) *Log {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if !enabled || path == "" {
		l.SetOutput(io.Discard)
		return &Log{l: l}
	}

	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		l.SetOutput(io.Discard)
		return &Log{l: l}
	}
	l.SetOutput(f)
	return &Log{l: l, file: f, enabled: true}
}

// Enabled reports whether records actually land anywhere.
func (g *Log) Enabled() bool { return g != nil && g.enabled }

// Command records one dispatched line and its exit code.
func (g *Log) Command(cwd, line string, code int) {
	if g == nil {
		return
	}
	g.l.WithFields(logrus.Fields{
		"cwd":  cwd,
		"exit": code,
	}).Info(line)
}

// Error records an internal failure.
func (g *Log) Error(err error) {
	if g == nil {
		return
	}
	g.l.WithError(err).Error("internal error")
}

// Close flushes and releases the log file.
func (g *Log) Close() {
	if g == nil || g.file == nil {
		return
	}
	_ = g.file.Close()
}
