/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package bundle packs a set of globbed filesystem paths into a single
// gzip-compressed tar archive, splits it into fixed-size chunks with a
// content digest, and reconstructs/extracts it on the receiving side.
// Packing follows this codebase's own kit-bundling convention (tar plus
// sha256) rather than the zip/md5 pairing of the system this was
// distilled from.
package bundle

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
)

// ErrDuplicateLeafName is returned at pack time when two expanded input
// paths share a leaf (base) name; silently keeping only one would
// discard caller-supplied input with no signal, so packing fails instead.
var ErrDuplicateLeafName = errors.New("bundle: duplicate leaf file name")

// Archive is a packed, gzip-compressed tar archive together with its
// precomputed integrity digest.
type Archive struct {
	Data []byte
	Hash [32]byte
}

// Pack expands each of patterns as a glob and archives the matching
// regular files, keyed by leaf name only (no directory structure is
// preserved in the resulting archive).
func Pack(patterns []string) (Archive, error) {
	paths, err := expand(patterns)
	if err != nil {
		return Archive{}, err
	}

	seen := make(map[string]struct{}, len(paths))
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return Archive{}, fmt.Errorf("bundle: stat %q: %w", p, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		leaf := filepath.Base(p)
		if _, dup := seen[leaf]; dup {
			return Archive{}, fmt.Errorf("%w: %s", ErrDuplicateLeafName, leaf)
		}
		seen[leaf] = struct{}{}

		if err := addFile(tw, leaf, p, info); err != nil {
			return Archive{}, err
		}
	}

	if err := tw.Close(); err != nil {
		return Archive{}, fmt.Errorf("bundle: close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return Archive{}, fmt.Errorf("bundle: close gzip writer: %w", err)
	}

	data := buf.Bytes()
	return Archive{Data: data, Hash: sha256.Sum256(data)}, nil
}

func addFile(tw *tar.Writer, leaf, path string, info os.FileInfo) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("bundle: open %q: %w", path, err)
	}
	defer f.Close()

	hdr := &tar.Header{
		Name: leaf,
		Mode: int64(info.Mode().Perm()),
		Size: info.Size(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("bundle: write tar header for %q: %w", leaf, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("bundle: write tar data for %q: %w", leaf, err)
	}
	return nil
}

func expand(patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bundle: expand glob %q: %w", pattern, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}
