/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package api defines the wire messages exchanged over an orosu session:
// the task launch request, the file-chunk transfer messages, and the
// server's launch-status and streaming-event notifications.
package api

import "time"

// StartTask is the single request a client sends after the connection is
// authenticated, naming the script to run, its trailing arguments, and an
// optional file attachment descriptor.
type StartTask struct {
	Script string          `json:"script"`
	Args   []string        `json:"args"`
	File   *FileAttachment `json:"file,omitempty"`
}

// FileAttachment declares the total size and integrity digest of a bundle
// the client intends to upload in chunks before the task is launched.
type FileAttachment struct {
	Hash []byte `json:"hash"`
	Size int    `json:"size"`
}

// FileChunk carries one contiguous slice of the bundle archive. Offset is
// the byte offset of Data within the full archive.
type FileChunk struct {
	Offset int    `json:"offset"`
	Data   []byte `json:"data"`
}

// TaskLaunchStatus is the server's response to StartTask while a file
// bundle is still being transferred, and once the task has been spawned.
// Exactly one of the two fields is populated; check which is non-nil.
type TaskLaunchStatus struct {
	AwaitingFiles *AwaitingFiles `json:"awaiting_files,omitempty"`
	Launched      *Launched      `json:"launched,omitempty"`
}

// AwaitingFiles asks the peer for the chunk starting at Offset.
type AwaitingFiles struct {
	Offset int `json:"offset"`
}

// Launched reports the wall-clock time the child process was started.
type Launched struct {
	StartedOn time.Time `json:"started_on"`
}

// OutputStream names which of the child's two output streams a line came
// from.
type OutputStream struct {
	Stdout *string `json:"stdout,omitempty"`
	Stderr *string `json:"stderr,omitempty"`
}

// TaskOutput is one captured line of a child's output, timestamped at
// capture.
type TaskOutput struct {
	Timestamp time.Time    `json:"timestamp"`
	Value     OutputStream `json:"value"`
}

// ServerTaskNotification is one streamed event during Streaming: either an
// output line or, exactly once and last, the terminal exit code.
type ServerTaskNotification struct {
	Output   *TaskOutput `json:"output,omitempty"`
	ExitCode *int        `json:"exit_code,omitempty"`
}

// ServerErrorResponse enumerates the application-level failures a session
// can report before closing.
type ServerErrorResponse string

const (
	ErrCannotLaunchScript ServerErrorResponse = "cannot_launch_script"
	ErrScriptNotFound     ServerErrorResponse = "script_not_found"
	ErrUnknown            ServerErrorResponse = "unknown"
)

// NewOutputStream builds an OutputStream tagging the given line as
// originating from stdout or stderr.
func NewOutputStream(stderr bool, line string) OutputStream {
	if stderr {
		return OutputStream{Stderr: &line}
	}
	return OutputStream{Stdout: &line}
}

// IsStderr reports whether this output value is tagged stderr.
func (o OutputStream) IsStderr() bool {
	return o.Stderr != nil
}

// Line returns the captured text regardless of stream.
func (o OutputStream) Line() string {
	if o.Stdout != nil {
		return *o.Stdout
	}
	if o.Stderr != nil {
		return *o.Stderr
	}
	return ""
}
