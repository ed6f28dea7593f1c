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

// BroadcastSender is the publisher side of a best-effort, one-to-many
// fan-out built over Channel[T].
//
// A subscriber calls Subscribe to get a private Receiver; the publisher
// calls Send to deliver a message to every current subscriber whose
// buffer is not full, dropping it for subscribers that cannot take it
// right now. When the last publisher handle is released, the
// broadcaster closes: every subscriber channel closes in turn, and
// each subscriber drains whatever it already buffered before observing
// end-of-stream.
type BroadcastSender[T any] interface {
	// Send delivers x to every current subscriber via a non-blocking
	// try-send, skipping (and effectively unsubscribing) any
	// subscriber whose receiver has already been released.
	//
	// It returns the number of subscribers the message was actually
	// enqueued for. If the broadcaster is closed, it returns 0 without
	// attempting delivery.
	Send(x T) int

	// Subscribe registers a new subscriber and returns its Receiver.
	//
	// If the broadcaster is already closed, Subscribe still returns a
	// valid, already-closed Receiver (Recv immediately yields
	// (zero, false)) rather than nil, so callers never need a nil
	// check on the result.
	Subscribe() Receiver[T]

	// Clone returns a new BroadcastSender sharing the same
	// broadcaster, incrementing its publisher-handle count.
	Clone() BroadcastSender[T]

	// Close closes the broadcaster: every subscriber channel is
	// closed (subscribers drain buffered messages, then observe
	// end-of-stream), and the subscriber list is emptied. It is
	// idempotent.
	Close()

	// Release releases this publisher handle. If it was the last live
	// publisher handle, the broadcaster closes (see Close). Calling
	// Release twice on the same handle panics.
	Release()
}

// broadcastState is the state shared by every BroadcastSender handle
// for one broadcaster.
type broadcastState[T any] struct {
	mu   Mutex
	subs []Sender[T] // producer-side endpoints of each subscriber's channel

	closed     bool
	publishers int
	capacity   int
}

// NewBroadcast creates a new BroadcastSender with the given
// per-subscriber channel capacity.
//
// It panics if capacity is less than 1.
func NewBroadcast[T any](capacity int) BroadcastSender[T] {
	b, err := NewTryBroadcast[T](capacity)
	if err != nil {
		panic(err)
	}
	return b
}

// NewTryBroadcast is the fallible counterpart of NewBroadcast.
func NewTryBroadcast[T any](capacity int) (BroadcastSender[T], error) {
	if capacity < 1 {
		return nil, errors.AutoWrap(errors.ErrCapacity)
	}
	return &broadcastSender[T]{
		st: &broadcastState[T]{
			mu:         NewMutex(),
			capacity:   capacity,
			publishers: 1,
		},
	}, nil
}

// broadcastSender is the implementation of BroadcastSender[T].
type broadcastSender[T any] struct {
	st       *broadcastState[T]
	released atomic.Bool
}

func (b *broadcastSender[T]) Send(x T) int {
	st := b.st
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return 0
	}
	delivered := 0
	live := st.subs[:0]
	for _, sub := range st.subs {
		if sub.IsClosed() {
			// The subscriber released its Receiver (or otherwise
			// closed its own channel); drop it from the list instead
			// of trying to send to it forever.
			continue
		}
		if sub.TrySend(x) {
			delivered++
		}
		live = append(live, sub)
	}
	st.subs = live
	return delivered
}

func (b *broadcastSender[T]) Subscribe() Receiver[T] {
	st := b.st
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		_, r := NewChannel[T](1)
		r.Close()
		return r
	}
	s, r := NewChannel[T](st.capacity)
	st.subs = append(st.subs, s)
	return r
}

func (b *broadcastSender[T]) Clone() BroadcastSender[T] {
	st := b.st
	st.mu.Lock()
	st.publishers++
	st.mu.Unlock()
	return &broadcastSender[T]{st: st}
}

func (b *broadcastSender[T]) Close() {
	st := b.st
	st.mu.Lock()
	if !st.closed {
		st.closed = true
		for _, sub := range st.subs {
			sub.Release()
		}
		st.subs = nil
	}
	st.mu.Unlock()
}

func (b *broadcastSender[T]) Release() {
	if !b.released.CompareAndSwap(false, true) {
		panic(errors.AutoMsg("broadcast sender released more than once"))
	}
	st := b.st
	st.mu.Lock()
	st.publishers--
	last := st.publishers == 0
	st.mu.Unlock()
	if last {
		b.Close()
	}
}
