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
	"fmt"
	stdruntime "runtime"
	"sync/atomic"

	"github.com/Milky2018/pthread/errors"
	"github.com/google/uuid"
)

// Thread is a handle to a spawned goroutine pinned to its own OS
// thread for the duration of the call, carrying the typed result of
// the function it runs.
//
// A Thread must be joined (Join or TryJoin) at most once. If it is
// never joined, its goroutine still runs to completion on its own —
// unlike a thread in languages with explicit join-or-detach lifetimes,
// a goroutine is never implicitly blocked on being joined, so there is
// nothing to "detach."
type Thread[T any] struct {
	id    uuid.UUID
	doneC chan struct{}

	result      T
	panicValue  any
	interrupted bool

	joined atomic.Bool
}

// Spawn starts f running on a new goroutine locked to its own OS
// thread for the duration of the call, and returns a Thread handle for
// retrieving its result.
//
// f takes no arguments; any state it needs must travel inside its
// closure, by value, since it runs on a different goroutine.
func Spawn[T any](f func() T) *Thread[T] {
	t := &Thread[T]{
		id:    uuid.New(),
		doneC: make(chan struct{}),
	}
	go func() {
		stdruntime.LockOSThread()
		defer stdruntime.UnlockOSThread()
		defer func() {
			if p := recover(); p != nil {
				t.panicValue = p
				t.interrupted = true
			}
			close(t.doneC)
		}()
		t.result = f()
	}()
	return t
}

// ID returns a stable identifier for this thread, useful for
// diagnosing panics and deadlocks involving many concurrent workers.
// TryJoin includes it in the error for a panicked thread; ThreadPool
// does not record it, and discards the panics its workers recover.
func (t *Thread[T]) ID() uuid.UUID {
	return t.id
}

// Join blocks until the thread's function returns, then returns its
// result.
//
// Calling Join (or TryJoin) a second time on the same Thread is a
// caller contract violation: Join panics rather than exhibiting
// undefined behavior. If the spawned function panicked, Join
// re-panics with the same value on the joining goroutine.
func (t *Thread[T]) Join() T {
	if !t.joined.CompareAndSwap(false, true) {
		panic(errors.AutoMsg("thread already joined"))
	}
	<-t.doneC
	if t.interrupted {
		panic(t.panicValue)
	}
	return t.result
}

// TryJoin is like Join, but it returns an error instead of panicking
// when the thread has already been joined, and wraps a panic from the
// spawned function into an error instead of repropagating it — for a
// caller in a recovery path that cannot tolerate a second panic.
func (t *Thread[T]) TryJoin() (result T, err error) {
	if !t.joined.CompareAndSwap(false, true) {
		return result, errors.AutoWrap(errors.ErrJoin)
	}
	<-t.doneC
	if t.interrupted {
		return result, fmt.Errorf(
			"%w: thread %s panicked: %v", errors.ErrJoin, t.id, t.panicValue,
		)
	}
	return t.result, nil
}
