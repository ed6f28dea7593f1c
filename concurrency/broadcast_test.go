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

func TestBroadcast_TwoSubscribersTwoSends(t *testing.T) {
	pub := NewBroadcast[int](4)
	sub1 := pub.Subscribe()
	sub2 := pub.Subscribe()

	if n := pub.Send(1); n != 2 {
		t.Errorf("first Send delivered to %d subscribers, want 2", n)
	}
	if n := pub.Send(2); n != 2 {
		t.Errorf("second Send delivered to %d subscribers, want 2", n)
	}

	for _, sub := range []Receiver[int]{sub1, sub2} {
		v, ok := sub.Recv()
		if !ok || v != 1 {
			t.Errorf("got (%v, %v), want (1, true)", v, ok)
		}
		v, ok = sub.Recv()
		if !ok || v != 2 {
			t.Errorf("got (%v, %v), want (2, true)", v, ok)
		}
	}
}

func TestBroadcast_SendWithNoSubscribers(t *testing.T) {
	pub := NewBroadcast[int](1)
	if n := pub.Send(1); n != 0 {
		t.Errorf("Send with no subscribers delivered to %d, want 0", n)
	}
}

func TestBroadcast_SendSkipsFullSubscriber(t *testing.T) {
	pub := NewBroadcast[int](1)
	slow := pub.Subscribe()
	fast := pub.Subscribe()

	pub.Send(1) // fills both one-slot buffers
	// fast frees its slot; slow stays full.
	v, ok := fast.Recv()
	if !ok || v != 1 {
		t.Errorf("fast.Recv() = (%v, %v), want (1, true)", v, ok)
	}
	if n := pub.Send(2); n != 1 {
		t.Errorf("Send with one full subscriber delivered to %d, want 1", n)
	}

	v, ok = slow.Recv()
	if !ok || v != 1 {
		t.Errorf("slow.Recv() = (%v, %v), want (1, true)", v, ok)
	}
	v, ok = fast.Recv()
	if !ok || v != 2 {
		t.Errorf("fast.Recv() = (%v, %v), want (2, true)", v, ok)
	}
}

func TestBroadcast_CloseDrainsBufferedThenEnds(t *testing.T) {
	pub := NewBroadcast[int](4)
	sub := pub.Subscribe()
	pub.Send(1)
	pub.Release()

	v, ok := sub.Recv()
	if !ok || v != 1 {
		t.Errorf("Recv() before drain = (%v, %v), want (1, true)", v, ok)
	}
	_, ok = sub.Recv()
	if ok {
		t.Error("Recv() after Close and drain returned ok=true.")
	}

	if n := pub.Send(2); n != 0 {
		t.Errorf("Send on closed broadcaster delivered to %d, want 0", n)
	}
}

func TestBroadcast_SubscribeAfterCloseReturnsClosedReceiver(t *testing.T) {
	pub := NewBroadcast[int](1)
	pub.Release()
	sub := pub.Subscribe()
	_, ok := sub.Recv()
	if ok {
		t.Error("Recv() on a post-close subscription returned ok=true.")
	}
}

func TestBroadcast_DoubleReleasePanics(t *testing.T) {
	pub := NewBroadcast[int](1)
	pub.Release()
	defer func() {
		if recover() == nil {
			t.Error("second Release did not panic.")
		}
	}()
	pub.Release()
}
