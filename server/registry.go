/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package server owns the server-side session state machine: the
// authentication handshake, the optional file-transfer loop, invoking
// the process supervisor, streaming its output back to the peer, and
// the terminal close handshake.
package server

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/orosu-ci/orosu/config"
	"github.com/orosu-ci/orosu/cryptography"
	"github.com/orosu-ci/orosu/netfilter"
)

// Identity is one authorized caller, resolved at startup from the
// configuration file: its public key, per-identity network filter, and
// the scripts it may run.
type Identity struct {
	Name      string
	PublicKey ed25519.PublicKey
	Filter    *netfilter.Filter
	Scripts   map[string]config.Script
}

// Script resolves a named runnable command for this identity.
func (id *Identity) Script(name string) (config.Script, bool) {
	s, ok := id.Scripts[name]
	return s, ok
}

// Registry is the immutable, process-lifetime set of authorized
// identities and the server's global network filter.
type Registry struct {
	identities map[string]*Identity
	global     *netfilter.Filter
}

// NewRegistry builds a Registry from a decoded and validated server
// configuration, reading and decoding every identity's public key file
// up front so the hot path never touches disk.
func NewRegistry(cfg *config.ServerConfig) (*Registry, error) {
	global, err := netfilter.New(cfg.Allow, cfg.Deny)
	if err != nil {
		return nil, fmt.Errorf("server: build global filter: %w", err)
	}

	identities := make(map[string]*Identity, len(cfg.Clients))
	for _, c := range cfg.Clients {
		raw, err := os.ReadFile(c.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("server: read public key for %s: %w", c.Name, err)
		}
		pub, err := cryptography.DecodePublicKey(string(raw))
		if err != nil {
			return nil, fmt.Errorf("server: decode public key for %s: %w", c.Name, err)
		}
		filter, err := netfilter.New(c.Allow, c.Deny)
		if err != nil {
			return nil, fmt.Errorf("server: build filter for %s: %w", c.Name, err)
		}
		scripts := make(map[string]config.Script, len(c.Scripts))
		for _, s := range c.Scripts {
			scripts[s.Name] = s
		}
		identities[c.Name] = &Identity{
			Name:      c.Name,
			PublicKey: pub,
			Filter:    filter,
			Scripts:   scripts,
		}
	}

	return &Registry{identities: identities, global: global}, nil
}

// Lookup returns the identity named name, if any.
func (r *Registry) Lookup(name string) (*Identity, bool) {
	id, ok := r.identities[name]
	return id, ok
}

// Global returns the server-wide network filter, applied before any
// per-identity filter.
func (r *Registry) Global() *netfilter.Filter {
	return r.global
}
