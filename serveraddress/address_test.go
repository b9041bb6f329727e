/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package serveraddress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAddsSchemeAndPath(t *testing.T) {
	u, err := Normalize("example.com:8443")
	require.NoError(t, err)
	require.Equal(t, "wss", u.Scheme)
	require.Equal(t, "/", u.Path)
	require.Equal(t, "example.com:8443", u.Host)
}

func TestNormalizePreservesExplicitSchemeAndPath(t *testing.T) {
	u, err := Normalize("ws://example.com:8443/session")
	require.NoError(t, err)
	require.Equal(t, "ws", u.Scheme)
	require.Equal(t, "/session", u.Path)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize("://not a url")
	require.Error(t, err)
}
