/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package log is a leveled, RFC 5424-formatted logging facility in the
// style of this codebase's own ingest-side logging package: a small set
// of levels, one or more writer sinks, and structured data parameters
// attached per call.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

// Level is a logging severity, ordered from least to most severe.
type Level int

const (
	OFF Level = iota
	DEBUG
	INFO
	WARN
	ERROR
	CRITICAL
	FATAL
)

func (l Level) String() string {
	switch l {
	case OFF:
		return "OFF"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	case FATAL:
		return "FATAL"
	}
	return "UNKNOWN"
}

func (l Level) valid() bool {
	return l >= OFF && l <= FATAL
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.User | rfc5424.Debug
	case INFO:
		return rfc5424.User | rfc5424.Info
	case WARN:
		return rfc5424.User | rfc5424.Warning
	case ERROR:
		return rfc5424.User | rfc5424.Error
	case CRITICAL:
		return rfc5424.User | rfc5424.Crit
	case FATAL:
		return rfc5424.User | rfc5424.Emergency
	}
	return rfc5424.User | rfc5424.Debug
}

// LevelFromString parses a configuration-file log level, case
// insensitively.
func LevelFromString(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF":
		return OFF, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "CRITICAL":
		return CRITICAL, nil
	case "FATAL":
		return FATAL, nil
	}
	return OFF, fmt.Errorf("log: invalid level %q", s)
}

// ErrNotOpen is returned by any operation on a Logger that has been
// closed.
var ErrNotOpen = errors.New("log: logger is not open")

// appName is derived once for the AppName RFC 5424 field.
var appName = deriveAppName()

func deriveAppName() string {
	if len(os.Args) == 0 {
		return "orosu"
	}
	base := os.Args[0]
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	return base
}

// Logger is a leveled logger writing RFC 5424 syslog-formatted entries
// to one or more writers.
type Logger struct {
	mtx  sync.Mutex
	wtrs []io.WriteCloser
	lvl  Level
	open bool
	host string
}

// New builds a Logger at level INFO writing to wtr.
func New(wtr io.WriteCloser) *Logger {
	host, _ := os.Hostname()
	return &Logger{wtrs: []io.WriteCloser{wtr}, lvl: INFO, open: true, host: host}
}

// NewFile opens (creating if absent, appending otherwise) a log file
// and wraps it in a Logger.
func NewFile(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("log: open %q: %w", path, err)
	}
	return New(f), nil
}

// NewStderr builds a Logger writing to standard error.
func NewStderr() *Logger {
	return New(nopCloser{os.Stderr})
}

// NewDiscard builds a Logger that drops every entry, for tests.
func NewDiscard() *Logger {
	return New(nopCloser{io.Discard})
}

// SetLevel changes the minimum level this logger will emit.
func (l *Logger) SetLevel(lvl Level) error {
	if !lvl.valid() {
		return fmt.Errorf("log: invalid level %d", lvl)
	}
	l.mtx.Lock()
	l.lvl = lvl
	l.mtx.Unlock()
	return nil
}

// SetLevelString is a convenience wrapper so a configuration file's
// level string can be applied directly.
func (l *Logger) SetLevelString(s string) error {
	lvl, err := LevelFromString(s)
	if err != nil {
		return err
	}
	return l.SetLevel(lvl)
}

// Close closes every writer sink.
func (l *Logger) Close() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if !l.open {
		return ErrNotOpen
	}
	l.open = false
	var err error
	for _, w := range l.wtrs {
		if cerr := w.Close(); cerr != nil {
			err = cerr
		}
	}
	return err
}

func (l *Logger) Debugf(f string, args ...interface{}) { l.outputf(DEBUG, f, args...) }
func (l *Logger) Infof(f string, args ...interface{})  { l.outputf(INFO, f, args...) }
func (l *Logger) Warnf(f string, args ...interface{})  { l.outputf(WARN, f, args...) }
func (l *Logger) Errorf(f string, args ...interface{}) { l.outputf(ERROR, f, args...) }

func (l *Logger) Debug(msg string, sds ...rfc5424.SDParam) { l.output(DEBUG, msg, sds...) }
func (l *Logger) Info(msg string, sds ...rfc5424.SDParam)  { l.output(INFO, msg, sds...) }
func (l *Logger) Warn(msg string, sds ...rfc5424.SDParam)  { l.output(WARN, msg, sds...) }
func (l *Logger) Error(msg string, sds ...rfc5424.SDParam) { l.output(ERROR, msg, sds...) }

func (l *Logger) outputf(lvl Level, f string, args ...interface{}) {
	l.output(lvl, fmt.Sprintf(f, args...))
}

func (l *Logger) output(lvl Level, msg string, sds ...rfc5424.SDParam) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if !l.open || lvl < l.lvl || l.lvl == OFF {
		return
	}
	raw, err := genRFCMessage(time.Now(), lvl.priority(), l.host, appName, msg, sds...)
	if err != nil {
		return
	}
	for _, w := range l.wtrs {
		io.WriteString(w, string(raw))
		io.WriteString(w, "\n")
	}
}

// genRFCMessage renders one RFC 5424 formatted log entry. Field length
// caps follow RFC 5424 sections 6.2.4 (HOSTNAME) and 6.2.5 (APP-NAME).
func genRFCMessage(ts time.Time, prio rfc5424.Priority, hostname, appname, msg string, sds ...rfc5424.SDParam) ([]byte, error) {
	m := rfc5424.Message{
		Priority:  prio,
		Timestamp: ts,
		Hostname:  trimLength(255, hostname),
		AppName:   trimLength(48, appname),
		Message:   []byte(msg),
	}
	if len(sds) > 0 {
		m.StructuredData = []rfc5424.StructuredData{{ID: "orosu@1", Parameters: sds}}
	}
	return m.MarshalBinary()
}

func trimLength(n int, s string) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
