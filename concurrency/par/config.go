// pthread.  A share-nothing multithreading library.
// Copyright (C) 2019-2025  Yuan Gao
//
// This file is part of pthread.
//
// pthread is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package par adapts a single-threaded lazy sequence into chunked
// parallel work over a concurrency.ThreadPool, with bounded
// in-flight backpressure — the Go analogue of Rayon's par_bridge.
package par

import "github.com/Milky2018/pthread/concurrency"

// defaultChunkSize is the fallback chunk size used when neither an
// explicit ChunkSize nor a total-length hint is available.
const defaultChunkSize = 64

// ParConfig configures how a parallel-iterator bridge operation
// chunks its input and bounds its in-flight work.
//
// Both fields default to 0, meaning "let the bridge pick a value";
// a ParConfig obtained from DefaultParConfig always has both fields
// resolved, while one from NewParConfig or a struct literal keeps its
// values as given and any non-positive field is resolved lazily inside
// the bridge functions.
type ParConfig struct {
	// ChunkSize is the number of items pulled from the source
	// sequence per submitted job. Non-positive means unresolved.
	ChunkSize int

	// MaxInFlight is the maximum number of chunk jobs allowed to be
	// queued or running at once. Non-positive means unresolved.
	MaxInFlight int
}

// NewParConfig creates a ParConfig with explicit chunkSize and
// maxInFlight. Non-positive values are still resolved lazily by the
// bridge functions using the pool's size.
func NewParConfig(chunkSize, maxInFlight int) ParConfig {
	return ParConfig{ChunkSize: chunkSize, MaxInFlight: maxInFlight}
}

// DefaultParConfig returns a ParConfig already resolved against pool's
// size, using defaultChunkSize for ChunkSize (no total-length hint is
// available from just a pool) and 2*pool.Size() for MaxInFlight.
func DefaultParConfig(pool *concurrency.ThreadPool) ParConfig {
	return ParConfig{}.resolve(pool, -1)
}

// resolve returns a copy of c with ChunkSize and MaxInFlight filled in
// from pool.Size() and, if known, totalHint (the number of items the
// caller expects the source sequence to produce; -1 if unknown).
func (c ParConfig) resolve(pool *concurrency.ThreadPool, totalHint int) ParConfig {
	out := c
	if out.ChunkSize <= 0 {
		if totalHint > 0 {
			out.ChunkSize = totalHint / (4 * pool.Size())
			if out.ChunkSize < 1 {
				out.ChunkSize = 1
			}
		} else {
			out.ChunkSize = defaultChunkSize
		}
	}
	if out.MaxInFlight <= 0 {
		out.MaxInFlight = 2 * pool.Size()
	}
	return out
}
