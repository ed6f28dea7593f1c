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

package par

import (
	"context"

	"github.com/Milky2018/pthread/concurrency"
	"golang.org/x/sync/semaphore"
)

// It is a single-threaded lazy sequence: each call produces the next
// item, or (zero, false) once the sequence is exhausted. This is the
// idiomatic Go shape for a pull-based iterator (compare
// bufio.Scanner's Scan/Text pair), so an existing slice, a
// bufio.Scanner, or a channel drain can all be adapted with a one-line
// closure.
//
// An It is defined to be driven by a single goroutine at a time: the
// bridge functions in this package pull from it exclusively on the
// calling goroutine. Splitting a lazy, stateful sequence's traversal
// safely across goroutines is a separate design this module does not
// attempt; pulling chunks on one goroutine and farming each chunk out
// to the pool is enough to parallelize the per-item work.
type It[T any] func() (item T, ok bool)

// FromSlice adapts a slice into an It.
func FromSlice[T any](s []T) It[T] {
	i := 0
	return func() (item T, ok bool) {
		if i >= len(s) {
			return item, false
		}
		item, ok = s[i], true
		i++
		return
	}
}

// pullChunk pulls up to n items from it into a freshly allocated
// slice. more reports whether it might still have further items
// (false only once it has been observed exhausted).
func pullChunk[T any](it It[T], n int) (chunk []T, more bool) {
	chunk = make([]T, 0, n)
	more = true
	for len(chunk) < n {
		item, ok := it()
		if !ok {
			more = false
			return
		}
		chunk = append(chunk, item)
	}
	return
}

// permits is the in-flight bound for a bridge run: a counting
// semaphore limiting how many chunks may be queued or running at
// once, so an unbounded producer can't outrun the pool and build an
// unbounded backlog of pending chunk results.
type permits struct {
	sem *semaphore.Weighted
	ctx context.Context
}

func newPermits(maxInFlight int) *permits {
	return &permits{
		sem: semaphore.NewWeighted(int64(maxInFlight)),
		ctx: context.Background(),
	}
}

func (p *permits) acquire() {
	// The background context never cancels, so Acquire only returns
	// an error if maxInFlight is non-positive, which ParConfig.resolve
	// never produces; the error is intentionally ignored here.
	_ = p.sem.Acquire(p.ctx, 1)
}

func (p *permits) release() {
	p.sem.Release(1)
}

// submitChunkJob submits a chunk-processing job that releases p when
// it completes (successfully or not), mirroring ThreadPool's own
// SubmitWithResult, but also reporting whether the submission itself
// succeeded — needed so the bridge functions can stop and report
// failure as soon as the pool is closed mid-run.
func submitChunkJob[U any](
	pool *concurrency.ThreadPool, p *permits, work func() U,
) (concurrency.Receiver[U], bool) {
	sender, receiver := concurrency.NewChannel[U](1)
	submitted := pool.Submit(func() {
		defer p.release()
		defer sender.Release()
		sender.Send(work())
	})
	if !submitted {
		p.release()
		sender.Release()
	}
	return receiver, submitted
}

// ParEach runs f over every item produced by it, processing chunks of
// cfg.ChunkSize items concurrently across pool's workers, with at most
// cfg.MaxInFlight chunks queued or running at once.
//
// It returns true if and only if every chunk was submitted
// successfully, i.e., the pool was never closed while it still had
// items to offer.
func ParEach[T any](
	it It[T], pool *concurrency.ThreadPool, cfg ParConfig, f func(T),
) bool {
	cfg = cfg.resolve(pool, -1)
	p := newPermits(cfg.MaxInFlight)

	var receivers []concurrency.Receiver[struct{}]
	ok := true
	for {
		chunk, more := pullChunk(it, cfg.ChunkSize)
		if len(chunk) == 0 {
			break
		}
		p.acquire()
		r, submitted := submitChunkJob(pool, p, func() struct{} {
			for _, item := range chunk {
				f(item)
			}
			return struct{}{}
		})
		receivers = append(receivers, r)
		if !submitted {
			ok = false
			break
		}
		if !more {
			break
		}
	}
	for _, r := range receivers {
		r.Recv()
	}
	return ok
}

// ParMapCollectUnordered maps f over every item produced by it,
// processing chunks concurrently as in ParEach, and collects every
// mapped value into a single slice. The chunks' results are
// concatenated in the order the chunks were pulled from it, not in the
// order the chunks finish, so the slice follows input order.
//
// It returns (nil, false) if any chunk failed to submit (the pool was
// closed mid-run); otherwise it returns (results, true).
func ParMapCollectUnordered[T, U any](
	it It[T], pool *concurrency.ThreadPool, cfg ParConfig, f func(T) U,
) ([]U, bool) {
	cfg = cfg.resolve(pool, -1)
	p := newPermits(cfg.MaxInFlight)

	var receivers []concurrency.Receiver[[]U]
	ok := true
	for {
		chunk, more := pullChunk(it, cfg.ChunkSize)
		if len(chunk) == 0 {
			break
		}
		p.acquire()
		r, submitted := submitChunkJob(pool, p, func() []U {
			mapped := make([]U, len(chunk))
			for i, item := range chunk {
				mapped[i] = f(item)
			}
			return mapped
		})
		receivers = append(receivers, r)
		if !submitted {
			ok = false
			break
		}
		if !more {
			break
		}
	}
	var results []U
	for _, r := range receivers {
		mapped, got := r.Recv()
		if got {
			results = append(results, mapped...)
		}
	}
	if !ok {
		return nil, false
	}
	return results, true
}

// ParFilterCollectUnordered keeps every item produced by it for which
// pred returns true, processing chunks concurrently as in ParEach, and
// collects the surviving items into a single slice, concatenated chunk
// by chunk in the order the chunks were pulled from it (as in
// ParMapCollectUnordered).
//
// It returns (nil, false) if any chunk failed to submit; otherwise it
// returns (results, true).
func ParFilterCollectUnordered[T any](
	it It[T], pool *concurrency.ThreadPool, cfg ParConfig, pred func(T) bool,
) ([]T, bool) {
	cfg = cfg.resolve(pool, -1)
	p := newPermits(cfg.MaxInFlight)

	var receivers []concurrency.Receiver[[]T]
	ok := true
	for {
		chunk, more := pullChunk(it, cfg.ChunkSize)
		if len(chunk) == 0 {
			break
		}
		p.acquire()
		r, submitted := submitChunkJob(pool, p, func() []T {
			var kept []T
			for _, item := range chunk {
				if pred(item) {
					kept = append(kept, item)
				}
			}
			return kept
		})
		receivers = append(receivers, r)
		if !submitted {
			ok = false
			break
		}
		if !more {
			break
		}
	}
	var results []T
	for _, r := range receivers {
		kept, got := r.Recv()
		if got {
			results = append(results, kept...)
		}
	}
	if !ok {
		return nil, false
	}
	return results, true
}
