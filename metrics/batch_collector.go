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

package metrics

import (
	"sync/atomic"
	"time"

	bf "github.com/TimeWtr/ByteFlow"
)

// BatchCollector Collector for reporting indicator data in batches,
// abstracted to provide interface to the caller
type BatchCollector interface {
	Controller
	Recorder
}

// Recorder Interface provided to the caller
type Recorder interface {
	RecordAppend(size int64, err error)          // Report producer appends
	RecordExtract(count, size int64, err error)  // Report consumer drains
	RecordRefill(size int64, err error)          // Report external reader refills
	RecordWait(latencyMillis int64)              // Report blocking wait latency
	RecordWaiter(op bf.OperationType)            // Report waiter registration changes
	RecordStatus(status bf.Status)               // Report lifecycle transitions
	RecordPoolAlloc()                            // Report pool object creation data
}

// Controller Batch update controller
type Controller interface {
	Start() // Start asynchronous batch update
	Stop()  // Stop asynchronous batch updates
	Flush() // Force immediate batch update
}

// appendStats Indicators for producer appends
type appendStats struct {
	appendCounts int64 // The total number of appends
	appendSizes  int64 // total bytes appended
	appendErrors int64 // Append failure error count
}

func (w *appendStats) Reset() {
	atomic.StoreInt64(&w.appendCounts, 0)
	atomic.StoreInt64(&w.appendSizes, 0)
	atomic.StoreInt64(&w.appendErrors, 0)
}

// extractStats Indicators for consumer drains
type extractStats struct {
	extractCounts int64 // The total number of extracts
	extractSizes  int64 // total bytes drained
	extractErrors int64 // Extract failure error count
}

func (r *extractStats) Reset() {
	atomic.StoreInt64(&r.extractCounts, 0)
	atomic.StoreInt64(&r.extractSizes, 0)
	atomic.StoreInt64(&r.extractErrors, 0)
}

type supporting struct {
	refillCounts     int64 // External reader refill times
	refillSizes      int64 // Bytes pulled from external readers
	refillFailures   int64 // External reader terminal failures
	waiterIncCounts  int64 // Waiter registrations
	waiterDecCounts  int64 // Waiter deregistrations
	lastWaitLatency  int64 // Latency of the last recorded wakeup
	waitLatencyDirty int64 // Whether a wait latency is pending report
	status           int64 // Latest lifecycle status
	poolAlloc        int64 // Object pool allocation times
}

func (s *supporting) Reset() {
	atomic.StoreInt64(&s.refillCounts, 0)
	atomic.StoreInt64(&s.refillSizes, 0)
	atomic.StoreInt64(&s.refillFailures, 0)
	atomic.StoreInt64(&s.waiterIncCounts, 0)
	atomic.StoreInt64(&s.waiterDecCounts, 0)
	atomic.StoreInt64(&s.waitLatencyDirty, 0)
	atomic.StoreInt64(&s.poolAlloc, 0)
}

var _ Recorder = (*BatchCollectImpl)(nil)

// BatchCollectImpl Batch indicator collector, encapsulates the underlying
// collector, and adds scheduled tasks regularly write indicator data to the
// underlying collector
type BatchCollectImpl struct {
	w   *appendStats  // Append indicator data
	r   *extractStats // Extract indicator data
	sp  *supporting   // Supporting indicators
	mc  Collector     // Bottom-level indicator collector
	t   *time.Ticker  // timer
	sem chan struct{} // shutdown the timer
}

func NewBatchCollector(mc Collector) *BatchCollectImpl {
	const duration = time.Second * 5
	b := &BatchCollectImpl{
		w:   &appendStats{},
		r:   &extractStats{},
		sp:  &supporting{},
		mc:  mc,
		t:   time.NewTicker(duration),
		sem: make(chan struct{}),
	}

	b.mc.CollectSwitcher(true)

	return b
}

func (b *BatchCollectImpl) RecordAppend(size int64, err error) {
	if err != nil {
		atomic.AddInt64(&b.w.appendErrors, 1)
		return
	}

	atomic.AddInt64(&b.w.appendCounts, 1)
	atomic.AddInt64(&b.w.appendSizes, size)
}

func (b *BatchCollectImpl) RecordExtract(count, size int64, err error) {
	if err != nil {
		atomic.AddInt64(&b.r.extractErrors, 1)
		return
	}

	atomic.AddInt64(&b.r.extractCounts, count)
	atomic.AddInt64(&b.r.extractSizes, size)
}

func (b *BatchCollectImpl) RecordRefill(size int64, err error) {
	if err != nil {
		atomic.AddInt64(&b.sp.refillFailures, 1)
		return
	}

	atomic.AddInt64(&b.sp.refillCounts, 1)
	atomic.AddInt64(&b.sp.refillSizes, size)
}

func (b *BatchCollectImpl) RecordWait(latencyMillis int64) {
	atomic.StoreInt64(&b.sp.lastWaitLatency, latencyMillis)
	atomic.StoreInt64(&b.sp.waitLatencyDirty, 1)
}

func (b *BatchCollectImpl) RecordWaiter(op bf.OperationType) {
	if op == bf.MetricsIncOp {
		atomic.AddInt64(&b.sp.waiterIncCounts, 1)
		return
	}

	atomic.AddInt64(&b.sp.waiterDecCounts, 1)
}

func (b *BatchCollectImpl) RecordStatus(status bf.Status) {
	atomic.StoreInt64(&b.sp.status, int64(status))
}

func (b *BatchCollectImpl) RecordPoolAlloc() {
	atomic.AddInt64(&b.sp.poolAlloc, 1)
}

func (b *BatchCollectImpl) Start() {
	go b.asyncWorker()
}

func (b *BatchCollectImpl) Stop() {
	close(b.sem)
}

func (b *BatchCollectImpl) Flush() {
	b.report()
}

func (b *BatchCollectImpl) asyncWorker() {
	for {
		select {
		case <-b.sem:
			return
		case <-b.t.C:
			b.report()
		}
	}
}

// report flushes one round of indicator data
func (b *BatchCollectImpl) report() {
	b.mc.ObserveAppend(float64(atomic.LoadInt64(&b.w.appendCounts)),
		float64(atomic.LoadInt64(&b.w.appendSizes)),
		float64(atomic.LoadInt64(&b.w.appendErrors)))
	b.w.Reset()

	b.mc.ObserveExtract(float64(atomic.LoadInt64(&b.r.extractCounts)),
		float64(atomic.LoadInt64(&b.r.extractSizes)),
		float64(atomic.LoadInt64(&b.r.extractErrors)))
	b.r.Reset()

	b.mc.ObserveRefill(float64(atomic.LoadInt64(&b.sp.refillCounts)),
		float64(atomic.LoadInt64(&b.sp.refillSizes)),
		float64(atomic.LoadInt64(&b.sp.refillFailures)))
	b.mc.ObserveWaiters(bf.MetricsIncOp, float64(atomic.LoadInt64(&b.sp.waiterIncCounts)))
	b.mc.ObserveWaiters(bf.MetricsDecOp, float64(atomic.LoadInt64(&b.sp.waiterDecCounts)))
	if atomic.LoadInt64(&b.sp.waitLatencyDirty) == 1 {
		b.mc.ObserveWaitLatency(float64(atomic.LoadInt64(&b.sp.lastWaitLatency)))
	}
	b.mc.ObserveStatus(float64(atomic.LoadInt64(&b.sp.status)))
	b.mc.AllocInc(float64(atomic.LoadInt64(&b.sp.poolAlloc)))
	b.sp.Reset()
}
