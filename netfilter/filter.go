/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package netfilter evaluates a connecting address against allow and deny
// CIDR lists, backed by the same radix-tree CIDR matcher this codebase's
// source-address router already uses for per-entry routing decisions.
package netfilter

import (
	"fmt"
	"net"
	"strings"

	"github.com/asergeyev/nradix"
)

// Filter holds an optional allow-list and an optional deny-list of
// address ranges. A nil list means "no restriction of that kind".
type Filter struct {
	allow *nradix.Tree
	deny  *nradix.Tree
}

// New builds a Filter from CIDR string lists. Either list may be empty,
// meaning that restriction is not applied.
func New(allow, deny []string) (*Filter, error) {
	f := &Filter{}
	if len(allow) > 0 {
		f.allow = nradix.NewTree(32)
		for _, cidr := range allow {
			if err := f.allow.AddCIDR(cidr, true); err != nil {
				return nil, fmt.Errorf("netfilter: bad allow entry %q: %w", cidr, err)
			}
		}
	}
	if len(deny) > 0 {
		f.deny = nradix.NewTree(32)
		for _, cidr := range deny {
			if err := f.deny.AddCIDR(cidr, true); err != nil {
				return nil, fmt.Errorf("netfilter: bad deny entry %q: %w", cidr, err)
			}
		}
	}
	return f, nil
}

// Allowed reports whether ip passes this filter: present in the allow
// list (if one exists) and absent from the deny list (if one exists).
func (f *Filter) Allowed(ip net.IP) bool {
	if f == nil {
		return true
	}
	if f.allow != nil {
		if v, _ := f.allow.FindCIDR(ip.String()); v == nil {
			return false
		}
	}
	if f.deny != nil {
		if v, _ := f.deny.FindCIDR(ip.String()); v != nil {
			return false
		}
	}
	return true
}

// Chain evaluates a global filter followed by a per-identity filter;
// either may be nil. The global filter is checked first, matching the
// spec's "global filters applied before per-identity filters" ordering.
func Chain(global, perIdentity *Filter, ip net.IP) bool {
	if global != nil && !global.Allowed(ip) {
		return false
	}
	if perIdentity != nil && !perIdentity.Allowed(ip) {
		return false
	}
	return true
}

// RemoteIP extracts the address to filter on: the rightmost entry of a
// X-Forwarded-For chain when present, otherwise the raw peer address.
func RemoteIP(forwardedFor string, peerAddr string) net.IP {
	if forwardedFor != "" {
		parts := strings.Split(forwardedFor, ",")
		last := strings.TrimSpace(parts[len(parts)-1])
		if ip := net.ParseIP(last); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(peerAddr)
	if err != nil {
		host = peerAddr
	}
	return net.ParseIP(host)
}
