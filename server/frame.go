/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	"bytes"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// frameTimeout bounds a single frame read or write so a truly wedged
// peer cannot pin a session goroutine forever; it is not a per-chunk
// protocol timeout, just transport hygiene in the style of this
// codebase's own websocket router.
const frameTimeout = 90 * time.Second

// ErrNotBinaryFrame is returned when a peer sends a text frame where the
// protocol requires a single binary frame per message.
var ErrNotBinaryFrame = errors.New("server: expected a binary frame")

// writeFrame serializes v strictly as JSON and sends it as a single
// binary WebSocket message.
func writeFrame(conn *websocket.Conn, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(frameTimeout))
	defer conn.SetWriteDeadline(time.Time{})
	return conn.WriteMessage(websocket.BinaryMessage, raw)
}

// readFrame receives exactly one binary WebSocket message and strictly
// decodes it into v, rejecting unknown fields.
func readFrame(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(frameTimeout))
	defer conn.SetReadDeadline(time.Time{})
	kind, raw, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	if kind != websocket.BinaryMessage {
		return ErrNotBinaryFrame
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
