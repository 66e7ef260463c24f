// Copyright 2025 TimeWtr
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TimeWtr/ByteFlow/config"
)

func TestWaiters_RegisterUnregister(t *testing.T) {
	w := newWaiterManager(config.DefaultLimits())

	id, _, _ := w.register()
	if w.count() != 1 {
		t.Errorf("Expected 1 waiter, got %d", w.count())
	}

	w.unregister(id)
	if w.count() != 0 {
		t.Error("Waiter should be removed after unregister")
	}

	w.unregister(id)
}

func TestWaiters_Notify(t *testing.T) {
	t.Run("no waiters", func(_ *testing.T) {
		w := newWaiterManager(config.DefaultLimits())
		w.notify(10)
	})

	t.Run("single notification", func(t *testing.T) {
		w := newWaiterManager(config.DefaultLimits())
		_, ch, _ := w.register()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-ch:
			case <-time.After(100 * time.Millisecond):
				t.Error("Notification not received")
			}
		}()

		time.Sleep(10 * time.Millisecond)
		w.notify(1)
		wg.Wait()
	})

	t.Run("batch notifications", func(t *testing.T) {
		const (
			numWaiters  = 50
			notifyCount = 30
			timeout     = 500 * time.Millisecond
		)

		w := newWaiterManager(config.DefaultLimits())
		var (
			received int32
			wg       sync.WaitGroup
		)

		for i := 0; i < numWaiters; i++ {
			_, ch, _ := w.register()
			wg.Add(1)
			go func(c <-chan struct{}) {
				defer wg.Done()
				select {
				case <-c:
					atomic.AddInt32(&received, 1)
				case <-time.After(timeout):
				}
			}(ch)
		}

		time.Sleep(20 * time.Millisecond)
		w.notify(notifyCount)
		wg.Wait()

		if got := atomic.LoadInt32(&received); got != int32(notifyCount) {
			t.Errorf("Expected %d notifications, got %d", notifyCount, got)
		}
	})

	t.Run("batch capped by limit", func(t *testing.T) {
		limits := config.DefaultLimits()
		limits.NotifyBatch = 4
		w := newWaiterManager(limits)

		chs := make([]<-chan struct{}, 0, 16)
		for i := 0; i < 16; i++ {
			_, ch, _ := w.register()
			chs = append(chs, ch)
		}

		w.notify(1 << 20)

		notified := 0
		for _, ch := range chs {
			select {
			case <-ch:
				notified++
			default:
			}
		}
		if notified != 4 {
			t.Errorf("Expected 4 notifications, got %d", notified)
		}
	})
}

func TestWaiters_Broadcast(t *testing.T) {
	w := newWaiterManager(config.DefaultLimits())

	const numWaiters = 16
	var (
		received int32
		wg       sync.WaitGroup
	)

	for i := 0; i < numWaiters; i++ {
		_, ch, _ := w.register()
		wg.Add(1)
		go func(c <-chan struct{}) {
			defer wg.Done()
			select {
			case <-c:
				atomic.AddInt32(&received, 1)
			case <-time.After(500 * time.Millisecond):
			}
		}(ch)
	}

	time.Sleep(20 * time.Millisecond)
	w.broadcast()
	wg.Wait()

	if got := atomic.LoadInt32(&received); got != numWaiters {
		t.Errorf("Expected %d waiters woken, got %d", numWaiters, got)
	}
	if w.count() != 0 {
		t.Error("Broadcast should drop every waiter")
	}
}

func TestWaiters_SetLimits(t *testing.T) {
	w := newWaiterManager(config.DefaultLimits())

	limits := config.DefaultLimits()
	limits.NotifyBatch = 1
	w.setLimits(limits)

	_, ch1, _ := w.register()
	_, ch2, _ := w.register()

	w.notify(100)

	notified := 0
	for _, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
			notified++
		default:
		}
	}
	if notified != 1 {
		t.Errorf("Expected 1 notification after shrink, got %d", notified)
	}
}

func TestWaiters_UnregisterDrainsPending(t *testing.T) {
	w := newWaiterManager(config.DefaultLimits())

	// the pool must never hand out a channel with a stale notification
	for i := 0; i < 64; i++ {
		id, _, _ := w.register()
		w.notify(1)
		w.unregister(id)

		_, ch, _ := w.register()
		select {
		case <-ch:
			t.Fatal("Recycled channel carried a stale notification")
		default:
		}
		w.Close()
		w = newWaiterManager(config.DefaultLimits())
	}
}

func TestWaiters_Close(t *testing.T) {
	w := newWaiterManager(config.DefaultLimits())
	_, ch, _ := w.register()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case _, ok := <-ch:
			if ok {
				t.Error("Channel should be closed")
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("Close not propagated")
		}
	}()

	time.Sleep(10 * time.Millisecond)
	w.Close()
	wg.Wait()

	// notify after close is a no-op
	w.notify(10)
	w.Close()
}

func TestWaiters_RegisterAfterCloseRejected(t *testing.T) {
	w := newWaiterManager(config.DefaultLimits())
	w.Close()

	_, _, ok := w.register()
	if ok {
		t.Error("register on a closed manager must be rejected")
	}
}

func TestWaiters_UnregisterAfterClose(t *testing.T) {
	w := newWaiterManager(config.DefaultLimits())
	id, _, ok := w.register()
	if !ok {
		t.Fatal("register failed on open manager")
	}

	w.Close()
	// the closed channel must not re-enter the pool
	w.unregister(id)
	if w.count() != 0 {
		t.Error("waiter should be removed")
	}
}

func TestWaiters_EdgeCases(t *testing.T) {
	t.Run("zero dataSize", func(t *testing.T) {
		w := newWaiterManager(config.DefaultLimits())
		w.register()
		w.notify(0)
		if w.count() != 1 {
			t.Error("Waiter should not be removed")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		w := newWaiterManager(config.DefaultLimits())
		var wg sync.WaitGroup

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id, _, _ := w.register()
				w.unregister(id)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				w.notify(10)
			}
		}()

		wg.Wait()
		if w.closed {
			t.Error("Unexpected close during concurrent access")
		}
	})
}

func TestMinFunction(t *testing.T) {
	tests := []struct {
		name     string
		values   []int
		expected int
	}{
		{"single value", []int{5}, 5},
		{"multiple values", []int{3, 1, 4}, 1},
		{"negative values", []int{-1, -5, -3}, -5},
		{"mixed values", []int{10, 5, 15}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := _min(tt.values...); got != tt.expected {
				t.Errorf("_min() = %v, want %v", got, tt.expected)
			}
		})
	}
}
