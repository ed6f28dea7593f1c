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
	"sync/atomic"

	"github.com/Milky2018/pthread/errors"
)

// Sender is the sending endpoint of a bounded MPSC Channel[T].
//
// Many Senders may share one Channel (via Clone); the channel tracks
// how many are still live and closes itself once the last one is
// released.
type Sender[T any] interface {
	// Send sends msg on the channel.
	//
	// It blocks while the channel is open, has at least one receiver,
	// and is full. It returns false, releasing msg, if the channel is
	// closed or has no receivers left by the time a slot is available
	// or the channel wakes. Otherwise, it enqueues msg and returns true.
	Send(msg T) bool

	// TrySend is the non-blocking variant of Send: it returns false
	// immediately (without enqueuing msg) if the channel is closed, has
	// no receivers, or is currently full.
	TrySend(msg T) bool

	// Clone returns a new Sender sharing the same channel, incrementing
	// the channel's sender count.
	Clone() Sender[T]

	// Close closes the channel for every sender and receiver: it
	// marks the channel closed and wakes every blocked Send and Recv.
	// It is idempotent; only the first call has an effect.
	Close()

	// Release releases this Sender handle, decrementing the channel's
	// sender count. If this was the last live sender, the channel is
	// closed. Release is the explicit substitute for "dropping" a
	// sender in a language without destructors; calling Release twice
	// on the same handle panics.
	Release()

	// IsClosed reports whether the channel has been closed.
	IsClosed() bool
}

// Receiver is the receiving endpoint of a bounded MPSC Channel[T].
//
// Many Receivers may share one channel (via Clone); the channel tracks
// how many are still live, closes itself once the last one is
// released, and discards any still-buffered messages at that point,
// since nothing will ever consume them.
type Receiver[T any] interface {
	// Recv blocks while the channel is open and empty. It returns
	// (zero, false) once the channel is closed and drained. Otherwise
	// it dequeues and returns (msg, true).
	Recv() (T, bool)

	// TryRecv is the non-blocking variant of Recv: it returns
	// (zero, false) immediately if the channel is currently empty,
	// regardless of whether it is closed.
	TryRecv() (T, bool)

	// Clone returns a new Receiver sharing the same channel,
	// incrementing the channel's receiver count.
	Clone() Receiver[T]

	// Close closes the channel for every sender and receiver.
	// See Sender.Close.
	Close()

	// Release releases this Receiver handle, decrementing the
	// channel's receiver count. If this was the last live receiver,
	// the channel is closed and any messages still buffered are
	// discarded immediately. Calling Release twice on the same
	// handle panics.
	Release()

	// Len returns the number of messages currently buffered
	// (a best-effort snapshot).
	Len() int

	// IsClosed reports whether the channel has been closed.
	IsClosed() bool
}

// channel is the shared state behind a bounded MPSC Channel[T]: a ring
// buffer guarded by a Mutex, with two Condvars ("canSend", "canRecv")
// implementing the blocking discipline a bounded buffer needs: a
// sender waits on canSend while the buffer is full, a receiver waits
// on canRecv while it is empty, and each side signals the other's
// condvar on progress.
type channel[T any] struct {
	mu      Mutex
	canSend *Condvar
	canRecv *Condvar

	buf               []T
	head, tail, length int

	closed    bool
	senders   int
	receivers int
}

// NewChannel creates a new bounded MPSC channel of the given capacity,
// returning its Sender and Receiver endpoints (senders=1, receivers=1).
//
// It panics if capacity is less than 1.
func NewChannel[T any](capacity int) (Sender[T], Receiver[T]) {
	s, r, err := NewTryChannel[T](capacity)
	if err != nil {
		panic(err)
	}
	return s, r
}

// NewTryChannel is the fallible counterpart of NewChannel. It returns a
// structured error (wrapping errors.ErrCapacity or errors.ErrAlloc)
// instead of panicking.
func NewTryChannel[T any](capacity int) (s Sender[T], r Receiver[T], err error) {
	if capacity < 1 {
		return nil, nil, errors.AutoWrap(errors.ErrCapacity)
	}
	defer func() {
		if p := recover(); p != nil {
			s, r, err = nil, nil, errors.AutoWrap(errors.ErrAlloc)
		}
	}()
	c := &channel[T]{
		buf:       make([]T, capacity),
		mu:        NewMutex(),
		canSend:   NewCondvar(),
		canRecv:   NewCondvar(),
		senders:   1,
		receivers: 1,
	}
	return &sender[T]{ch: c}, &receiver[T]{ch: c}, nil
}

// sender is the implementation of Sender[T].
type sender[T any] struct {
	ch       *channel[T]
	released atomic.Bool
}

func (s *sender[T]) Send(msg T) bool {
	c := s.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.closed && c.receivers > 0 && c.length == len(c.buf) {
		c.canSend.Wait(c.mu)
	}
	if c.closed || c.receivers == 0 {
		return false
	}
	c.enqueueLocked(msg)
	c.canRecv.Signal()
	return true
}

func (s *sender[T]) TrySend(msg T) bool {
	c := s.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.receivers == 0 || c.length == len(c.buf) {
		return false
	}
	c.enqueueLocked(msg)
	c.canRecv.Signal()
	return true
}

func (s *sender[T]) Clone() Sender[T] {
	c := s.ch
	c.mu.Lock()
	c.senders++
	c.mu.Unlock()
	return &sender[T]{ch: c}
}

func (s *sender[T]) Close() {
	s.ch.closeLocked()
}

func (s *sender[T]) IsClosed() bool {
	c := s.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (s *sender[T]) Release() {
	if !s.released.CompareAndSwap(false, true) {
		panic(errors.AutoMsg("sender released more than once"))
	}
	c := s.ch
	c.mu.Lock()
	c.senders--
	if c.senders == 0 {
		c.closed = true
		c.canSend.Broadcast()
		c.canRecv.Broadcast()
	}
	c.mu.Unlock()
}

// receiver is the implementation of Receiver[T].
type receiver[T any] struct {
	ch       *channel[T]
	released atomic.Bool
}

func (r *receiver[T]) Recv() (T, bool) {
	c := r.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.closed && c.length == 0 {
		c.canRecv.Wait(c.mu)
	}
	if c.length == 0 {
		var zero T
		return zero, false
	}
	msg := c.dequeueLocked()
	c.canSend.Signal()
	return msg, true
}

func (r *receiver[T]) TryRecv() (T, bool) {
	c := r.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.length == 0 {
		var zero T
		return zero, false
	}
	msg := c.dequeueLocked()
	c.canSend.Signal()
	return msg, true
}

func (r *receiver[T]) Clone() Receiver[T] {
	c := r.ch
	c.mu.Lock()
	c.receivers++
	c.mu.Unlock()
	return &receiver[T]{ch: c}
}

func (r *receiver[T]) Close() {
	r.ch.closeLocked()
}

func (r *receiver[T]) Release() {
	if !r.released.CompareAndSwap(false, true) {
		panic(errors.AutoMsg("receiver released more than once"))
	}
	c := r.ch
	c.mu.Lock()
	c.receivers--
	if c.receivers == 0 {
		c.closed = true
		// Nothing will ever consume what is left, so release it now
		// rather than holding it until the channel is garbage
		// collected.
		c.buf = nil
		c.head, c.tail, c.length = 0, 0, 0
		c.canSend.Broadcast()
		c.canRecv.Broadcast()
	}
	c.mu.Unlock()
}

func (r *receiver[T]) Len() int {
	c := r.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length
}

func (r *receiver[T]) IsClosed() bool {
	c := r.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// enqueueLocked writes msg at the tail of the ring buffer.
// The caller must hold c.mu.
func (c *channel[T]) enqueueLocked(msg T) {
	c.buf[c.tail] = msg
	c.tail = (c.tail + 1) % len(c.buf)
	c.length++
}

// dequeueLocked removes and returns the message at the head of the
// ring buffer. The caller must hold c.mu and guarantee c.length > 0.
func (c *channel[T]) dequeueLocked() T {
	msg := c.buf[c.head]
	var zero T
	c.buf[c.head] = zero // drop the reference so it can be collected
	c.head = (c.head + 1) % len(c.buf)
	c.length--
	return msg
}

// closeLocked marks the channel closed and wakes every waiter. It is
// idempotent.
func (c *channel[T]) closeLocked() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.canSend.Broadcast()
		c.canRecv.Broadcast()
	}
	c.mu.Unlock()
}
