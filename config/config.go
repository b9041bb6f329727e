/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package config loads and validates the server's YAML configuration
// file: listen address, global network filters, logging, and the
// identity registry of clients and the scripts they may run. Grounded
// on this codebase's own configuration packages: a plain struct tree
// decoded with gopkg.in/yaml.v3, an explicit Validate step, and named
// Err* sentinels for the failure modes a caller might want to match on.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values applied when the corresponding field is left empty.
const (
	DefaultChunkSize = 64 * 1024
	DefaultLogLevel  = "info"
)

var (
	ErrNoListenAddress   = errors.New("config: listen address is required")
	ErrNoClients         = errors.New("config: at least one client is required")
	ErrDuplicateClient   = errors.New("config: duplicate client name")
	ErrDuplicateScript   = errors.New("config: duplicate script name within a client")
	ErrEmptyScriptName   = errors.New("config: script name is required")
	ErrEmptyClientName   = errors.New("config: client name is required")
	ErrEmptyCommand      = errors.New("config: script command must not be empty")
	ErrNoPublicKeyFile   = errors.New("config: client public_key_file is required")
)

// Script is one runnable command an identity is authorized to invoke.
type Script struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	RunAs   string   `yaml:"run_as"`
}

// Client is one authorized identity and the commands it may run.
type Client struct {
	Name          string   `yaml:"name"`
	PublicKeyFile string   `yaml:"public_key_file"`
	Allow         []string `yaml:"allow"`
	Deny          []string `yaml:"deny"`
	Scripts       []Script `yaml:"scripts"`
}

// ServerConfig is the full decoded server configuration file.
type ServerConfig struct {
	Listen    string   `yaml:"listen"`
	LogLevel  string   `yaml:"log_level"`
	LogFile   string   `yaml:"log_file"`
	LockFile  string   `yaml:"lock_file"`
	ChunkSize int      `yaml:"chunk_size"`
	Allow     []string `yaml:"allow"`
	Deny      []string `yaml:"deny"`
	Clients   []Client `yaml:"clients"`
}

// Load reads, parses, and validates a server configuration file at
// path, applying defaults for any omitted optional field.
func Load(path string) (*ServerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	var cfg ServerConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate %q: %w", path, err)
	}
	return &cfg, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks every invariant the data model (spec section 3)
// requires: unique client names, unique script names within a client,
// and non-empty command vectors.
func (c *ServerConfig) Validate() error {
	if c.Listen == "" {
		return ErrNoListenAddress
	}
	if len(c.Clients) == 0 {
		return ErrNoClients
	}

	seenClients := make(map[string]struct{}, len(c.Clients))
	for _, client := range c.Clients {
		if client.Name == "" {
			return ErrEmptyClientName
		}
		if _, dup := seenClients[client.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateClient, client.Name)
		}
		seenClients[client.Name] = struct{}{}

		if client.PublicKeyFile == "" {
			return fmt.Errorf("%w: client %s", ErrNoPublicKeyFile, client.Name)
		}

		seenScripts := make(map[string]struct{}, len(client.Scripts))
		for _, script := range client.Scripts {
			if script.Name == "" {
				return fmt.Errorf("%w: client %s", ErrEmptyScriptName, client.Name)
			}
			if _, dup := seenScripts[script.Name]; dup {
				return fmt.Errorf("%w: client %s script %s", ErrDuplicateScript, client.Name, script.Name)
			}
			seenScripts[script.Name] = struct{}{}

			if len(script.Command) == 0 {
				return fmt.Errorf("%w: client %s script %s", ErrEmptyCommand, client.Name, script.Name)
			}
		}
	}
	return nil
}
