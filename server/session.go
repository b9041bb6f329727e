/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orosu-ci/orosu/api"
	"github.com/orosu-ci/orosu/bundle"
	"github.com/orosu-ci/orosu/log"
	"github.com/orosu-ci/orosu/tasks"
)

// closeGrace bounds how long the server waits, after sending its own
// close frame, for the peer's close frame in return.
const closeGrace = 3 * time.Second

// ErrProtocol marks a session-fatal protocol violation: wrong message
// kind for the current state, a decode failure, or an out-of-order
// chunk offset. Per the spec's error taxonomy, the peer is not sent an
// error envelope for these -- it cannot be trusted to interpret one.
var ErrProtocol = errors.New("server: protocol violation")

// Session owns one connection from just after authentication and
// network filtering through to close.
type Session struct {
	conn      *websocket.Conn
	identity  *Identity
	chunkSize int
	log       *log.SessionLogger
}

// NewSession constructs a session for an already-upgraded, already
// authenticated connection.
func NewSession(conn *websocket.Conn, identity *Identity, chunkSize int, logger *log.SessionLogger) *Session {
	return &Session{conn: conn, identity: identity, chunkSize: chunkSize, log: logger}
}

// Run drives the session to completion: AwaitingStart, the optional
// file transfer, Launching, Streaming, and Closing. It always returns
// after the connection is closed or closing.
func (s *Session) Run(ctx context.Context) error {
	defer s.conn.Close()

	var req api.StartTaskRequestEnvelope
	if err := readFrame(s.conn, &req); err != nil {
		return errProtocolf("read StartTask: %w", err)
	}

	script, ok := s.identity.Script(req.Body.Script)
	if !ok {
		writeFrame(s.conn, api.NewFailure[api.TaskLaunchStatus](api.ErrScriptNotFound))
		s.closeHandshake()
		return nil
	}

	var attachmentsDir string
	if req.Body.File != nil {
		dir, err := s.transferFiles(req.Body.File)
		if err != nil {
			if errors.Is(err, ErrProtocol) {
				return err
			}
			writeFrame(s.conn, api.NewFailure[api.TaskLaunchStatus](api.ErrCannotLaunchScript))
			s.closeHandshake()
			return err
		}
		attachmentsDir = dir
		defer os.RemoveAll(attachmentsDir)
	}

	sup, err := tasks.Run(ctx, tasks.Spec{
		Argv:           script.Command,
		ExtraArgs:      req.Body.Args,
		AttachmentsDir: attachmentsDir,
		RunAs:          script.RunAs,
	})
	if err != nil {
		writeFrame(s.conn, api.NewFailure[api.TaskLaunchStatus](api.ErrCannotLaunchScript))
		s.closeHandshake()
		return err
	}

	if err := writeFrame(s.conn, api.NewSuccess[api.TaskLaunchStatus, api.ServerErrorResponse](api.TaskLaunchStatus{
		Launched: &api.Launched{StartedOn: time.Now().UTC()},
	})); err != nil {
		sup.Kill()
		return err
	}

	s.stream(ctx, sup)
	s.closeHandshake()
	return nil
}

// transferFiles runs the lockstep AwaitingFiles/FileChunk loop until
// the declared total size is reached, then validates the digest and
// extracts the archive. Any offset mismatch is a protocol violation:
// the caller closes without sending a further message.
func (s *Session) transferFiles(file *api.FileAttachment) (string, error) {
	var want [32]byte
	copy(want[:], file.Hash)

	asm, err := bundle.NewAssembler(file.Size, want)
	if err != nil {
		return "", err
	}

	for !asm.Done() {
		if err := writeFrame(s.conn, api.NewSuccess[api.TaskLaunchStatus, api.ServerErrorResponse](api.TaskLaunchStatus{
			AwaitingFiles: &api.AwaitingFiles{Offset: asm.ExpectedOffset()},
		})); err != nil {
			asm.Abort()
			return "", err
		}

		var req api.FileChunkRequestEnvelope
		if err := readFrame(s.conn, &req); err != nil {
			asm.Abort()
			return "", errProtocolf("read FileChunk: %w", err)
		}

		if err := asm.Accept(req.Body.Offset, req.Body.Data); err != nil {
			asm.Abort()
			return "", errProtocolf("accept chunk: %w", err)
		}
	}

	archive, err := asm.Finish()
	if err != nil {
		return "", err
	}

	dir, err := bundle.Extract(archive)
	if err != nil {
		return "", err
	}
	return dir, nil
}

// stream subscribes to the supervisor's output and forwards every line
// to the peer, then sends the terminal exit code. If a send fails
// mid-stream, the loop stops and no exit-code message is sent.
func (s *Session) stream(ctx context.Context, sup *tasks.Supervisor) {
	sub := sup.Subscribe()
	defer sup.Unsubscribe(sub)

	for ev := range sub.Events() {
		if ev.Lagged != nil {
			s.log.Warn("output subscriber lagged", log.KV("lagged_by", *ev.Lagged))
			continue
		}
		notification := api.ServerTaskNotification{
			Output: &api.TaskOutput{
				Timestamp: ev.Line.Timestamp.UTC(),
				Value:     api.NewOutputStream(ev.Line.Stderr, ev.Line.Text),
			},
		}
		if err := writeFrame(s.conn, api.NewSuccess[api.ServerTaskNotification, api.ServerErrorResponse](notification)); err != nil {
			sup.Kill()
			return
		}
	}

	code := sup.Wait(ctx)
	writeFrame(s.conn, api.NewSuccess[api.ServerTaskNotification, api.ServerErrorResponse](api.ServerTaskNotification{
		ExitCode: &code,
	}))
}

// closeHandshake sends a close frame and then drains inbound frames for
// up to closeGrace, returning as soon as the peer's close frame arrives
// or the grace period expires.
func (s *Session) closeHandshake() {
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(frameTimeout))

	deadline := time.Now().Add(closeGrace)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.log.Warn("close handshake timed out waiting for peer")
			return
		}
		s.conn.SetReadDeadline(deadline)
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			return
		}
	}
}

func errProtocolf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrProtocol}, args...)...)
}
