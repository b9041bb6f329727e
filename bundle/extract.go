/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package bundle

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// ErrOffsetMismatch is returned by an Assembler when a chunk's offset
// does not match the expected running offset; per the protocol this is
// fatal to the session and no further message is sent to the peer.
var ErrOffsetMismatch = errors.New("bundle: chunk offset mismatch")

// ErrDigestMismatch is returned by Assembler.Finish when the recomputed
// digest does not match the digest declared at the start of the
// transfer.
var ErrDigestMismatch = errors.New("bundle: digest mismatch")

// Assembler reconstructs an Archive from a sequence of chunks arriving
// in strict, contiguous offset order, maintaining a running digest
// incrementally so the full archive never needs to be held twice over.
type Assembler struct {
	want   [32]byte
	total  int
	file   *os.File
	digest hash.Hash
	offset int
}

// NewAssembler opens a scratch file backing the incoming archive.
func NewAssembler(total int, want [32]byte) (*Assembler, error) {
	f, err := os.CreateTemp("", "orosu-bundle-*.tar.gz")
	if err != nil {
		return nil, fmt.Errorf("bundle: create scratch file: %w", err)
	}
	return &Assembler{
		want:   want,
		total:  total,
		file:   f,
		digest: sha256.New(),
	}, nil
}

// ExpectedOffset is the offset the next accepted chunk must carry.
func (a *Assembler) ExpectedOffset() int {
	return a.offset
}

// Done reports whether every byte of the declared total has been
// accepted.
func (a *Assembler) Done() bool {
	return a.offset == a.total
}

// Accept appends one chunk. The caller must have already checked the
// chunk's offset equals ExpectedOffset(); Accept re-checks and returns
// ErrOffsetMismatch defensively. A chunk that would carry the accepted
// total past the declared size is rejected without being written.
func (a *Assembler) Accept(offset int, data []byte) error {
	if offset != a.offset {
		return ErrOffsetMismatch
	}
	if a.offset+len(data) > a.total {
		return fmt.Errorf("bundle: chunk at offset %d overruns declared size %d", offset, a.total)
	}
	if _, err := a.file.Write(data); err != nil {
		return fmt.Errorf("bundle: write scratch file: %w", err)
	}
	a.digest.Write(data)
	a.offset += len(data)
	return nil
}

// Finish validates the running digest against the declared digest and,
// on success, returns the archive bytes read back from the scratch file.
// The scratch file is always removed.
func (a *Assembler) Finish() (Archive, error) {
	defer a.cleanup()

	var got [32]byte
	copy(got[:], a.digest.Sum(nil))
	if got != a.want {
		return Archive{}, ErrDigestMismatch
	}

	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return Archive{}, fmt.Errorf("bundle: seek scratch file: %w", err)
	}
	data, err := io.ReadAll(a.file)
	if err != nil {
		return Archive{}, fmt.Errorf("bundle: read scratch file: %w", err)
	}
	return Archive{Data: data, Hash: got}, nil
}

// Abort discards the in-progress transfer and its scratch file without
// validating anything.
func (a *Assembler) Abort() {
	a.cleanup()
}

func (a *Assembler) cleanup() {
	name := a.file.Name()
	a.file.Close()
	os.Remove(name)
}

// Extract decompresses and unpacks an Archive's tar entries into a fresh
// temporary directory, returning its path. The caller owns cleanup of
// the returned directory.
func Extract(a Archive) (string, error) {
	dir, err := os.MkdirTemp("", "orosu-attachments-*")
	if err != nil {
		return "", fmt.Errorf("bundle: create extraction directory: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(a.Data))
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("bundle: open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("bundle: read tar entry: %w", err)
		}

		target := filepath.Join(dir, filepath.Base(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				os.RemoveAll(dir)
				return "", fmt.Errorf("bundle: create directory %q: %w", target, err)
			}
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				os.RemoveAll(dir)
				return "", fmt.Errorf("bundle: create parent of %q: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				os.RemoveAll(dir)
				return "", fmt.Errorf("bundle: create file %q: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				os.RemoveAll(dir)
				return "", fmt.Errorf("bundle: write file %q: %w", target, err)
			}
			out.Close()
		}
	}
	return dir, nil
}
