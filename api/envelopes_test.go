/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package api

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestRequestEnvelopeRoundTrip(t *testing.T) {
	req := NewRequest(StartTask{Script: "echo-args", Args: []string{"a", "b"}})
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded StartTaskRequestEnvelope
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, req, decoded)
}

func TestResponseEnvelopeSuccessBranch(t *testing.T) {
	resp := NewSuccess[TaskLaunchStatus, ServerErrorResponse](TaskLaunchStatus{
		AwaitingFiles: &AwaitingFiles{Offset: 4096},
	})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"success"`)
	require.NotContains(t, string(raw), `"failure"`)

	var decoded TaskLaunchStatusEnvelope
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.True(t, decoded.IsSuccess())
	require.Equal(t, 4096, decoded.Success.Body.AwaitingFiles.Offset)
}

func TestResponseEnvelopeFailureBranch(t *testing.T) {
	resp := NewFailure[TaskLaunchStatus](ErrScriptNotFound)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded TaskLaunchStatusEnvelope
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.False(t, decoded.IsSuccess())
	require.Equal(t, ErrScriptNotFound, decoded.Failure.Error)
}

func TestOutputStreamTagging(t *testing.T) {
	out := NewOutputStream(true, "boom")
	require.True(t, out.IsStderr())
	require.Equal(t, "boom", out.Line())

	out = NewOutputStream(false, "hi")
	require.False(t, out.IsStderr())
	require.Equal(t, "hi", out.Line())
}

func TestParseUserAgent(t *testing.T) {
	ua, err := ParseUserAgent("Orosu/1.2.3")
	require.NoError(t, err)
	require.Equal(t, "1.2.3", ua.Version)
	require.Equal(t, "Orosu/1.2.3", ua.String())

	_, err = ParseUserAgent("curl/8.0")
	require.ErrorIs(t, err, ErrMalformedUserAgent)

	_, err = ParseUserAgent("Orosu/")
	require.ErrorIs(t, err, ErrMalformedUserAgent)
}
