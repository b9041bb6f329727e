/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validYAML = `
listen: ":8443"
log_level: info
chunk_size: 65536
allow:
  - 10.0.0.0/8
clients:
  - name: alice
    public_key_file: alice.pub
    scripts:
      - name: echo-args
        command: ["echo", "hello"]
      - name: cat-bundle
        command: ["sh", "-c", "cat \"$ATTACHMENTS_DIR\"/a.txt"]
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orosu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8443", cfg.Listen)
	require.Equal(t, 65536, cfg.ChunkSize)
	require.Len(t, cfg.Clients, 1)
	require.Len(t, cfg.Clients[0].Scripts, 2)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, `
listen: ":8443"
clients:
  - name: alice
    public_key_file: alice.pub
    scripts:
      - name: echo-args
        command: ["echo"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestValidateRejectsMissingListen(t *testing.T) {
	cfg := &ServerConfig{Clients: []Client{{Name: "a", PublicKeyFile: "x", Scripts: []Script{{Name: "s", Command: []string{"echo"}}}}}}
	require.ErrorIs(t, cfg.Validate(), ErrNoListenAddress)
}

func TestValidateRejectsDuplicateClients(t *testing.T) {
	cfg := &ServerConfig{
		Listen: ":8443",
		Clients: []Client{
			{Name: "a", PublicKeyFile: "x", Scripts: []Script{{Name: "s", Command: []string{"echo"}}}},
			{Name: "a", PublicKeyFile: "y", Scripts: []Script{{Name: "s", Command: []string{"echo"}}}},
		},
	}
	require.ErrorIs(t, cfg.Validate(), ErrDuplicateClient)
}

func TestValidateRejectsDuplicateScripts(t *testing.T) {
	cfg := &ServerConfig{
		Listen: ":8443",
		Clients: []Client{
			{Name: "a", PublicKeyFile: "x", Scripts: []Script{
				{Name: "s", Command: []string{"echo"}},
				{Name: "s", Command: []string{"echo"}},
			}},
		},
	}
	require.ErrorIs(t, cfg.Validate(), ErrDuplicateScript)
}

func TestValidateRejectsEmptyCommand(t *testing.T) {
	cfg := &ServerConfig{
		Listen:  ":8443",
		Clients: []Client{{Name: "a", PublicKeyFile: "x", Scripts: []Script{{Name: "s"}}}},
	}
	require.ErrorIs(t, cfg.Validate(), ErrEmptyCommand)
}

func TestValidateRejectsNoClients(t *testing.T) {
	cfg := &ServerConfig{Listen: ":8443"}
	require.ErrorIs(t, cfg.Validate(), ErrNoClients)
}
