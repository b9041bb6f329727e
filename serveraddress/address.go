/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package serveraddress normalizes a user-supplied server endpoint into a
// concrete URL the client transport can dial, defaulting the scheme and
// path the way this codebase's own client helpers already do for partial
// inputs.
package serveraddress

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultScheme is used when the caller's address has none.
const DefaultScheme = "wss"

// Normalize parses raw and fills in a default scheme of "wss" and a
// default path of "/" when absent.
func Normalize(raw string) (*url.URL, error) {
	target := raw
	if !strings.Contains(raw, "://") {
		// url.Parse treats a bare "host:port" as scheme:opaque, so the
		// default scheme is prefixed on before parsing.
		target = DefaultScheme + "://" + raw
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("serveraddress: invalid address %q: %w", raw, err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}
