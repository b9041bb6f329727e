/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package netfilter

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterNilMeansUnrestricted(t *testing.T) {
	f, err := New(nil, nil)
	require.NoError(t, err)
	require.True(t, f.Allowed(net.ParseIP("8.8.8.8")))
}

func TestFilterAllowList(t *testing.T) {
	f, err := New([]string{"10.0.0.0/8"}, nil)
	require.NoError(t, err)
	require.True(t, f.Allowed(net.ParseIP("10.1.2.3")))
	require.False(t, f.Allowed(net.ParseIP("192.168.1.1")))
}

func TestFilterDenyList(t *testing.T) {
	f, err := New(nil, []string{"10.1.2.3/32"})
	require.NoError(t, err)
	require.False(t, f.Allowed(net.ParseIP("10.1.2.3")))
	require.True(t, f.Allowed(net.ParseIP("10.1.2.4")))
}

func TestChainGlobalThenIdentity(t *testing.T) {
	global, err := New(nil, []string{"10.1.2.3/32"})
	require.NoError(t, err)
	identity, err := New([]string{"10.0.0.0/8"}, nil)
	require.NoError(t, err)

	require.False(t, Chain(global, identity, net.ParseIP("10.1.2.3")))
	require.True(t, Chain(global, identity, net.ParseIP("10.1.2.4")))
	require.False(t, Chain(global, identity, net.ParseIP("192.168.0.1")))
}

func TestRemoteIPPrefersRightmostForwardedFor(t *testing.T) {
	ip := RemoteIP("203.0.113.5, 10.0.0.1", "192.168.1.1:443")
	require.Equal(t, "10.0.0.1", ip.String())

	ip = RemoteIP("", "192.168.1.1:443")
	require.Equal(t, "192.168.1.1", ip.String())
}
