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
	"sync"

	"github.com/Milky2018/pthread/errors"
)

// Mutex is a mutual exclusion lock based on a Go channel.
//
// It can be used similarly to sync.Mutex. Unlike sync.Mutex, it lets a
// client acquire the lock while also listening to other channels in a
// select statement instead of blocking unconditionally. Channel and
// Condvar in this package use only Lock and Unlock.
//
// Like sync.Mutex, it permits a client to acquire the lock on one
// goroutine and release it on another. It does not support reentry and
// panics if Unlock is called on an already-unlocked Mutex.
type Mutex interface {
	sync.Locker

	// C returns the channel for acquiring the lock.
	//
	// Receiving a signal on this channel has the same effect as
	// calling Lock:
	//	<-m.C()
	// is equivalent to
	//	m.Lock()
	C() <-chan struct{}

	// Locked reports whether the mutex is currently locked.
	Locked() bool
}

// NewMutex creates a new Mutex.
func NewMutex() Mutex {
	m := &mutex{c: make(chan struct{}, 1)}
	m.c <- struct{}{}
	return m
}

// mutex is an implementation of Mutex.
type mutex struct {
	c chan struct{}
}

func (m *mutex) Lock() {
	<-m.c
}

func (m *mutex) Unlock() {
	select {
	case m.c <- struct{}{}:
	default:
		panic(errors.AutoMsg("unlock of an unlocked mutex"))
	}
}

func (m *mutex) C() <-chan struct{} {
	return m.c
}

func (m *mutex) Locked() bool {
	return len(m.c) == 0
}
