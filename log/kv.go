/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package log

import (
	"fmt"

	"github.com/crewjam/rfc5424"
	"github.com/google/uuid"
)

// KV builds one structured-data parameter.
func KV(name string, value interface{}) rfc5424.SDParam {
	if s, ok := value.(string); ok {
		return rfc5424.SDParam{Name: name, Value: s}
	}
	return rfc5424.SDParam{Name: name, Value: fmt.Sprintf("%v", value)}
}

// KVErr is a convenience wrapper for the common "error" parameter.
func KVErr(err error) rfc5424.SDParam {
	return KV("error", err)
}

// SessionLogger is a Logger bound to a fixed set of structured-data
// parameters, so every call site for one connection's lifetime need not
// repeat its session id.
type SessionLogger struct {
	*Logger
	sds []rfc5424.SDParam
}

// NewSession tags l with a freshly minted session id for correlating log
// lines across the lifetime of one connection.
func NewSession(l *Logger) *SessionLogger {
	return WithFields(l, KV("session", uuid.NewString()))
}

// WithFields returns a SessionLogger that always includes sds in
// addition to whatever is passed at each call site.
func WithFields(l *Logger, sds ...rfc5424.SDParam) *SessionLogger {
	return &SessionLogger{Logger: l, sds: sds}
}

func (s *SessionLogger) Debug(msg string, sds ...rfc5424.SDParam) {
	s.Logger.Debug(msg, append(append([]rfc5424.SDParam{}, s.sds...), sds...)...)
}

func (s *SessionLogger) Info(msg string, sds ...rfc5424.SDParam) {
	s.Logger.Info(msg, append(append([]rfc5424.SDParam{}, s.sds...), sds...)...)
}

func (s *SessionLogger) Warn(msg string, sds ...rfc5424.SDParam) {
	s.Logger.Warn(msg, append(append([]rfc5424.SDParam{}, s.sds...), sds...)...)
}

func (s *SessionLogger) Error(msg string, sds ...rfc5424.SDParam) {
	s.Logger.Error(msg, append(append([]rfc5424.SDParam{}, s.sds...), sds...)...)
}
