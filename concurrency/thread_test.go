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

import "testing"

func TestThread_JoinReturnsResult(t *testing.T) {
	th := Spawn(func() int { return 7 })
	if v := th.Join(); v != 7 {
		t.Errorf("Join() = %d, want 7", v)
	}
}

func TestThread_JoinRepropagatesPanic(t *testing.T) {
	th := Spawn(func() int {
		panic("boom")
	})
	defer func() {
		r := recover()
		if r != "boom" {
			t.Errorf("recovered %v, want \"boom\"", r)
		}
	}()
	th.Join()
}

func TestThread_DoubleJoinPanics(t *testing.T) {
	th := Spawn(func() int { return 1 })
	th.Join()
	defer func() {
		if recover() == nil {
			t.Error("second Join did not panic.")
		}
	}()
	th.Join()
}

func TestThread_TryJoinReportsPanicAsError(t *testing.T) {
	th := Spawn(func() int {
		panic("boom")
	})
	_, err := th.TryJoin()
	if err == nil {
		t.Error("TryJoin returned a nil error for a panicking thread.")
	}
}

func TestThread_IDIsStable(t *testing.T) {
	th := Spawn(func() int { return 0 })
	id1, id2 := th.ID(), th.ID()
	if id1 != id2 {
		t.Error("ID() returned different values across calls.")
	}
	th.Join()
}
