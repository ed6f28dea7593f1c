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

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Milky2018/pthread/errors"
)

// defaultParallelism picks a worker count for a ThreadPool created
// without an explicit NumWorkers: max(1, runtime.NumCPU()-2), leaving
// a couple of cores free for the goroutine doing the submitting and
// for the Go runtime itself.
func defaultParallelism() int {
	n := runtime.NumCPU() - 2
	if n < 1 {
		n = 1
	}
	return n
}

// job is the unit of work a ThreadPool runs. It takes no arguments and
// returns nothing; SubmitWithResult builds one of these around a
// result-returning function and a private one-shot channel.
type job func()

// PoolOptions configures a ThreadPool.
//
// Non-positive fields are normalized to a sensible default inside the
// constructor rather than requiring every caller to compute its own.
type PoolOptions struct {
	// NumWorkers is the number of worker goroutines. Non-positive
	// values use max(1, runtime.NumCPU()-2).
	NumWorkers int

	// QueueCapacity is the capacity of the internal job channel.
	// Non-positive values use NumWorkers (after normalization).
	QueueCapacity int
}

// ThreadPool is a fixed-size pool of worker goroutines pulling jobs
// from one bounded Channel[job].
type ThreadPool struct {
	sender Sender[job]

	workers []*Thread[struct{}]
	size    int

	pending atomic.Int64 // jobs submitted but not yet finished running

	closeOnce sync.Once
	joinOnce  sync.Once
}

// NewThreadPool creates a new ThreadPool and starts its workers.
//
// It panics if the resolved queue capacity is less than 1.
func NewThreadPool(opts PoolOptions) *ThreadPool {
	p, err := NewTryThreadPool(opts)
	if err != nil {
		panic(err)
	}
	return p
}

// NewTryThreadPool is the fallible counterpart of NewThreadPool.
func NewTryThreadPool(opts PoolOptions) (*ThreadPool, error) {
	size := opts.NumWorkers
	if size <= 0 {
		size = defaultParallelism()
	}
	queueCap := opts.QueueCapacity
	if queueCap <= 0 {
		queueCap = size
	}

	sender, receiver, err := NewTryChannel[job](queueCap)
	if err != nil {
		return nil, errors.AutoWrap(err)
	}

	p := &ThreadPool{sender: sender, size: size}
	p.workers = make([]*Thread[struct{}], size)

	r := receiver
	for i := 0; i < size; i++ {
		if i > 0 {
			r = r.Clone()
		}
		rr := r
		p.workers[i] = Spawn(func() struct{} {
			p.runWorker(rr)
			return struct{}{}
		})
	}
	return p, nil
}

// runWorker pulls jobs from r until the channel is drained and closed,
// running each to completion. A panicking job is recovered so that one
// bad job cannot take down the whole worker goroutine.
func (p *ThreadPool) runWorker(r Receiver[job]) {
	defer r.Release()
	for {
		j, ok := r.Recv()
		if !ok {
			return
		}
		p.runJob(j)
	}
}

func (p *ThreadPool) runJob(j job) {
	defer p.pending.Add(-1)
	defer func() {
		recover() // isolate the pool from a panicking job
	}()
	j()
}

// Size returns the number of worker goroutines in this pool.
func (p *ThreadPool) Size() int {
	return p.size
}

// Len returns the number of jobs submitted but not yet finished
// running (queued plus currently executing), a best-effort snapshot.
func (p *ThreadPool) Len() int {
	return int(p.pending.Load())
}

// Submit enqueues f to be run by a worker goroutine. It blocks while
// the queue is full, and returns false without running f if the pool
// is closed.
func (p *ThreadPool) Submit(f func()) bool {
	p.pending.Add(1)
	if p.sender.Send(job(f)) {
		return true
	}
	p.pending.Add(-1)
	return false
}

// TrySubmit is like Submit, but it returns a structured error instead
// of a bare bool when the pool is closed, for a caller that otherwise
// only handles errors.
func (p *ThreadPool) TrySubmit(f func()) error {
	if p.Submit(f) {
		return nil
	}
	return errors.AutoWrap(errors.ErrPoolClosed)
}

// SubmitWithResult submits f to be run by a worker goroutine and
// returns a Receiver that will yield f's result exactly once.
//
// It is a package-level function, not a method on ThreadPool, because
// Go methods cannot introduce a new type parameter beyond those of
// their receiver type.
//
// If the pool is closed, the returned Receiver is already closed and
// Recv immediately yields (zero, false).
func SubmitWithResult[T any](p *ThreadPool, f func() T) Receiver[T] {
	sender, recvr := NewChannel[T](1)
	ok := p.Submit(func() {
		defer sender.Release()
		sender.Send(f())
	})
	if !ok {
		sender.Release()
	}
	return recvr
}

// Close stops accepting new submissions: it releases the pool's own
// sender handle on the job queue, so Submit starts returning false and
// workers observe end-of-stream once the queue drains. Jobs already
// queued before Close still run. Close is idempotent.
func (p *ThreadPool) Close() {
	p.closeOnce.Do(func() {
		p.sender.Release()
	})
}

// Join blocks until every worker goroutine has exited. It is normally
// called after Close (or via Shutdown). Join is idempotent: only the
// first call actually waits on the workers.
//
// A job that panics is already recovered inside runJob before it ever
// reaches a worker's Thread, so there is no failure left for Join to
// report; it only waits.
func (p *ThreadPool) Join() {
	p.joinOnce.Do(func() {
		var wg sync.WaitGroup
		wg.Add(len(p.workers))
		for _, w := range p.workers {
			w := w
			go func() {
				defer wg.Done()
				w.Join()
			}()
		}
		wg.Wait()
	})
}

// Shutdown closes the pool and waits for every worker to exit. It is
// idempotent.
func (p *ThreadPool) Shutdown() {
	p.Close()
	p.Join()
}
