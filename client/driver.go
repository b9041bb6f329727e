/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package client is the mirror of the server's session state machine
// from the requesting side: it mints a token, connects, sends
// StartTask, services the file-transfer handshake, and streams the
// task's output to local callbacks until the exit code arrives.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/orosu-ci/orosu/api"
	"github.com/orosu-ci/orosu/bundle"
	"github.com/orosu-ci/orosu/cryptography"
	"github.com/orosu-ci/orosu/serveraddress"
)

// ErrTaskFailed is returned when the server responds to StartTask (or a
// FileChunk) with a Failure envelope.
var ErrTaskFailed = errors.New("client: task failed")

// ErrUnexpectedMessage marks a message kind the driver did not expect
// for the current protocol step -- the server side is misbehaving.
var ErrUnexpectedMessage = errors.New("client: unexpected message")

// OutputFunc receives one captured output line as it streams in.
type OutputFunc func(stderr bool, line string)

// Options configures one task invocation.
type Options struct {
	// Address is the server endpoint, normalized via serveraddress.
	Address string
	// Script names the configured command to run.
	Script string
	// Args are appended to the script's fixed argument vector.
	Args []string
	// Key is the caller's private-key blob, used to mint the auth token.
	Key cryptography.ClientKey
	// Attachments, if non-empty, are glob patterns packed into a file
	// bundle and uploaded before the task launches.
	Attachments []string
	// ChunkSize is the upload chunk size; defaults to bundle.DefaultChunkSize.
	ChunkSize int
	// Version is the client version reported in the User-Agent header.
	Version string
	// Output receives every streamed output line, in arrival order.
	Output OutputFunc
}

// Result is the terminal outcome of a successful session.
type Result struct {
	ExitCode int
}

// Run drives one full session against a server: connect, authenticate,
// start the task, transfer any attached files, stream output, and
// return the exit code.
func Run(ctx context.Context, opts Options) (Result, error) {
	priv, err := opts.Key.PrivateKey()
	if err != nil {
		return Result{}, fmt.Errorf("client: load private key: %w", err)
	}
	token, err := cryptography.Mint(priv, opts.Key.ClientName)
	if err != nil {
		return Result{}, fmt.Errorf("client: mint token: %w", err)
	}

	endpoint, err := serveraddress.Normalize(opts.Address)
	if err != nil {
		return Result{}, fmt.Errorf("client: normalize address: %w", err)
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	headers := http.Header{}
	headers.Set("Authorization", "Token "+token)
	headers.Set("User-Agent", "Orosu/"+version)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), headers)
	if err != nil {
		if resp != nil {
			return Result{}, fmt.Errorf("client: connect: status %d: %w", resp.StatusCode, err)
		}
		return Result{}, fmt.Errorf("client: connect: %w", err)
	}
	defer conn.Close()

	var chunks []api.FileChunk
	var file *api.FileAttachment
	if len(opts.Attachments) > 0 {
		archive, err := bundle.Pack(opts.Attachments)
		if err != nil {
			return Result{}, fmt.Errorf("client: pack attachments: %w", err)
		}
		chunkSize := opts.ChunkSize
		if chunkSize <= 0 {
			chunkSize = bundle.DefaultChunkSize
		}
		chunks = bundle.Chunks(archive, chunkSize)
		file = &api.FileAttachment{Hash: archive.Hash[:], Size: len(archive.Data)}
	}

	if err := writeFrame(conn, api.NewRequest(api.StartTask{
		Script: opts.Script,
		Args:   opts.Args,
		File:   file,
	})); err != nil {
		return Result{}, fmt.Errorf("client: send StartTask: %w", err)
	}

	for {
		var resp api.TaskLaunchStatusEnvelope
		if err := readFrame(conn, &resp); err != nil {
			return Result{}, fmt.Errorf("client: read launch status: %w", err)
		}
		if !resp.IsSuccess() {
			return Result{}, fmt.Errorf("%w: %s", ErrTaskFailed, resp.Failure.Error)
		}

		switch {
		case resp.Success.Body.AwaitingFiles != nil:
			chunk, ok := bundle.ChunkAt(chunks, resp.Success.Body.AwaitingFiles.Offset)
			if !ok {
				return Result{}, fmt.Errorf("%w: no chunk at offset %d", ErrUnexpectedMessage, resp.Success.Body.AwaitingFiles.Offset)
			}
			if err := writeFrame(conn, api.NewRequest(chunk)); err != nil {
				return Result{}, fmt.Errorf("client: send FileChunk: %w", err)
			}
		case resp.Success.Body.Launched != nil:
			return stream(conn, opts.Output)
		default:
			return Result{}, fmt.Errorf("%w: empty TaskLaunchStatus", ErrUnexpectedMessage)
		}
	}
}

// stream services the Streaming state: forward every Output line to the
// caller's callback until ExitCode arrives, then acknowledge close.
func stream(conn *websocket.Conn, out OutputFunc) (Result, error) {
	for {
		var ev api.TaskEventEnvelope
		if err := readFrame(conn, &ev); err != nil {
			return Result{}, fmt.Errorf("client: read task event: %w", err)
		}
		if !ev.IsSuccess() {
			return Result{}, fmt.Errorf("%w: %s", ErrTaskFailed, ev.Failure.Error)
		}

		notification := ev.Success.Body
		if notification.Output != nil {
			if out != nil {
				out(notification.Output.Value.IsStderr(), notification.Output.Value.Line())
			}
			continue
		}
		if notification.ExitCode != nil {
			sendClose(conn)
			return Result{ExitCode: *notification.ExitCode}, nil
		}
		return Result{}, fmt.Errorf("%w: empty ServerTaskNotification", ErrUnexpectedMessage)
	}
}

func sendClose(conn *websocket.Conn) {
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(frameTimeout))
}

const frameTimeout = 90 * time.Second

func writeFrame(conn *websocket.Conn, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(frameTimeout))
	defer conn.SetWriteDeadline(time.Time{})
	return conn.WriteMessage(websocket.BinaryMessage, raw)
}

func readFrame(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(frameTimeout))
	defer conn.SetReadDeadline(time.Time{})
	kind, raw, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	if kind != websocket.BinaryMessage {
		return fmt.Errorf("%w: got message kind %d", ErrUnexpectedMessage, kind)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
