/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package api

import (
	"errors"
	"fmt"
	"strings"
)

// UserAgentPrefix is the product token every orosu client must send.
const UserAgentPrefix = "Orosu"

// ErrMalformedUserAgent is returned when a User-Agent header does not
// match "Orosu/<version>".
var ErrMalformedUserAgent = errors.New("api: malformed user-agent header")

// UserAgent is the parsed product/version pair from a client's
// User-Agent header.
type UserAgent struct {
	Version string
}

// String renders the canonical header value.
func (u UserAgent) String() string {
	return fmt.Sprintf("%s/%s", UserAgentPrefix, u.Version)
}

// ParseUserAgent validates and parses a raw User-Agent header value. The
// prefix must be exactly UserAgentPrefix followed by a "/" and a
// non-empty version token.
func ParseUserAgent(raw string) (UserAgent, error) {
	prefix := UserAgentPrefix + "/"
	if !strings.HasPrefix(raw, prefix) {
		return UserAgent{}, ErrMalformedUserAgent
	}
	version := strings.TrimPrefix(raw, prefix)
	if version == "" {
		return UserAgent{}, ErrMalformedUserAgent
	}
	return UserAgent{Version: version}, nil
}
