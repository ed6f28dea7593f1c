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
	"sort"
	"sync/atomic"
	"testing"

	"github.com/Milky2018/pthread/concurrency"
)

func newTestPool(t *testing.T) *concurrency.ThreadPool {
	t.Helper()
	pool := concurrency.NewThreadPool(concurrency.PoolOptions{
		NumWorkers:    4,
		QueueCapacity: 8,
	})
	t.Cleanup(pool.Shutdown)
	return pool
}

func intRange(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func TestParMapCollectUnordered_Doubles(t *testing.T) {
	pool := newTestPool(t)
	const n = 1000
	cfg := NewParConfig(16, 8)

	got, ok := ParMapCollectUnordered(
		FromSlice(intRange(n)), pool, cfg, func(x int) int { return 2 * x },
	)
	if !ok {
		t.Fatal("ParMapCollectUnordered reported submission failure.")
	}
	if len(got) != n {
		t.Fatalf("len(got) = %d, want %d", len(got), n)
	}
	sort.Ints(got)
	for i, v := range got {
		if want := 2 * i; v != want {
			t.Errorf("got[%d] = %d, want %d", i, v, want)
		}
	}
}

func TestParFilterCollectUnordered_Evens(t *testing.T) {
	pool := newTestPool(t)
	const n = 1000
	cfg := NewParConfig(16, 8)

	got, ok := ParFilterCollectUnordered(
		FromSlice(intRange(n)), pool, cfg, func(x int) bool { return x%2 == 0 },
	)
	if !ok {
		t.Fatal("ParFilterCollectUnordered reported submission failure.")
	}
	if len(got) != n/2 {
		t.Fatalf("len(got) = %d, want %d", len(got), n/2)
	}
	for _, v := range got {
		if v%2 != 0 {
			t.Errorf("got an odd value %d", v)
		}
	}
}

func TestParEach_SumsIntoChannel(t *testing.T) {
	pool := newTestPool(t)
	const n = 200
	sender, receiver := concurrency.NewChannel[int](128)
	cfg := NewParConfig(8, 4)

	// n exceeds the channel's capacity, so the consumer must drain
	// concurrently or the workers block in Send and ParEach never returns.
	sumC := make(chan int, 1)
	go func() {
		sum := 0
		for {
			v, ok := receiver.Recv()
			if !ok {
				break
			}
			sum += v
		}
		sumC <- sum
	}()

	var submitted int64
	ok := ParEach(FromSlice(intRange(n)), pool, cfg, func(x int) {
		atomic.AddInt64(&submitted, 1)
		sender.Send(x)
	})
	sender.Release()
	if !ok {
		t.Fatal("ParEach reported submission failure.")
	}
	if submitted != n {
		t.Fatalf("submitted = %d, want %d", submitted, n)
	}

	sum := <-sumC
	want := n * (n - 1) / 2
	if sum != want {
		t.Errorf("sum = %d, want %d", sum, want)
	}
}

func TestParMapCollectUnordered_EmptyInput(t *testing.T) {
	pool := newTestPool(t)
	got, ok := ParMapCollectUnordered(
		FromSlice([]int(nil)), pool, DefaultParConfig(pool), func(x int) int { return x },
	)
	if !ok {
		t.Fatal("ParMapCollectUnordered reported submission failure on empty input.")
	}
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
}

func TestParMapCollectUnordered_FailsAfterPoolClosed(t *testing.T) {
	pool := concurrency.NewThreadPool(concurrency.PoolOptions{
		NumWorkers:    2,
		QueueCapacity: 2,
	})
	pool.Shutdown()

	_, ok := ParMapCollectUnordered(
		FromSlice(intRange(10)), pool, NewParConfig(2, 2), func(x int) int { return x },
	)
	if ok {
		t.Error("ParMapCollectUnordered reported success against a closed pool.")
	}
}
