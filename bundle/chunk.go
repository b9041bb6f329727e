/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package bundle

import "github.com/orosu-ci/orosu/api"

// DefaultChunkSize is used when a caller does not configure one.
const DefaultChunkSize = 64 * 1024

// Chunks slices an archive's bytes into contiguous chunks of at most
// size bytes each, with strictly increasing, contiguous offsets.
func Chunks(a Archive, size int) []api.FileChunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []api.FileChunk
	for offset := 0; offset < len(a.Data); offset += size {
		end := offset + size
		if end > len(a.Data) {
			end = len(a.Data)
		}
		chunks = append(chunks, api.FileChunk{
			Offset: offset,
			Data:   a.Data[offset:end],
		})
	}
	return chunks
}

// ChunkAt returns the chunk in chunks whose offset matches want, and
// whether one was found. The client uses this to service AwaitingFiles
// requests, which may in principle arrive in any order even though the
// server in practice drives them sequentially.
func ChunkAt(chunks []api.FileChunk, want int) (api.FileChunk, bool) {
	for _, c := range chunks {
		if c.Offset == want {
			return c, true
		}
	}
	return api.FileChunk{}, false
}
