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

	"github.com/TimeWtr/ByteFlow/config"
)

// WaiterManager tracks consumers blocked on an Async buffer. Each waiter owns
// a buffered channel of size one, so notifications never block the producer.
type WaiterManager struct {
	ws          map[int]chan struct{}
	pool        sync.Pool
	mu          sync.Mutex
	currentID   int
	closed      bool
	maxWaiters  int
	notifyBatch int
}

func newWaiterManager(limits config.Limits) *WaiterManager {
	return &WaiterManager{
		ws: make(map[int]chan struct{}),
		pool: sync.Pool{
			New: func() interface{} {
				return make(chan struct{}, 1)
			},
		},
		maxWaiters:  limits.MaxWaiters,
		notifyBatch: limits.NotifyBatch,
	}
}

func (w *WaiterManager) setLimits(limits config.Limits) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.maxWaiters = limits.MaxWaiters
	w.notifyBatch = limits.NotifyBatch
}

// register adds a waiter. It fails once the manager is closed, otherwise a
// consumer woken by Close would re-register on a dead manager and block until
// its context expires.
func (w *WaiterManager) register() (id int, ch <-chan struct{}, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, nil, false
	}

	id = w.currentID + 1
	w.currentID = id
	notify, _ := w.pool.Get().(chan struct{})
	w.ws[id] = notify

	return id, notify, true
}

func (w *WaiterManager) unregister(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch, exist := w.ws[id]
	if !exist {
		return
	}
	delete(w.ws, id)

	// Close already closed the channel, it must not re-enter the pool
	if w.closed {
		return
	}

	// drain a pending notification before pooling the channel
	select {
	case <-ch:
	default:
	}

	w.pool.Put(ch)
}

func (w *WaiterManager) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.ws)
}

// notify wakes blocked consumers after new data arrived. At most one waiter
// per appended byte is woken, in batches, so a single small append does not
// stampede every waiter.
// Fast path: skip notification if there is no waiter, or the manager has
// been closed.
func (w *WaiterManager) notify(dataSize int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// fast path
	if len(w.ws) == 0 || w.closed {
		return
	}

	totalToNotify := _min(w.notifyBatch, dataSize, w.maxWaiters)
	if totalToNotify <= 0 {
		return
	}

	var shouldDelete []int
	for id, notify := range w.ws {
		if totalToNotify <= 0 {
			break
		}

		select {
		case notify <- struct{}{}:
			totalToNotify--
		default:
		}
		shouldDelete = append(shouldDelete, id)
	}

	for _, id := range shouldDelete {
		delete(w.ws, id)
	}
}

// broadcast wakes every waiter regardless of data size. Used for status
// transitions so blocked consumers observe termination instead of hanging.
func (w *WaiterManager) broadcast() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	for id, notify := range w.ws {
		select {
		case notify <- struct{}{}:
		default:
		}
		delete(w.ws, id)
	}
}

func (w *WaiterManager) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true

	for _, notify := range w.ws {
		close(notify)
	}
}

// _min calculate the minimum value.
func _min(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}

	return m
}
