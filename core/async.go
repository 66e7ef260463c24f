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
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	bf "github.com/TimeWtr/ByteFlow"
	"github.com/TimeWtr/ByteFlow/config"
	"github.com/TimeWtr/ByteFlow/errorx"
	"github.com/TimeWtr/ByteFlow/metrics"
)

type Options func(a *Async) error

// WithMetrics Enable indicator collection and specify the collector type
func WithMetrics(collector bf.CollectorType) Options {
	return func(a *Async) error {
		if !collector.Validate() {
			return errors.New("invalid metrics collector")
		}

		a.enableMetrics = true
		switch collector {
		case bf.PrometheusCollector:
			a.mc = metrics.NewBatchCollector(metrics.NewPrometheus())
		case bf.OpenTelemetryCollector:
		}

		return nil
	}
}

// WithLimits attaches hot-reloadable limits. The buffer re-reads them after
// every update notification.
func WithLimits(dl *config.DynamicLimits) Options {
	return func(a *Async) error {
		if dl == nil {
			return errorx.ErrInvalidConfig
		}

		a.limits = dl
		a.lNotify = dl.Register()
		l := dl.GetConfig()
		a.buf.SetMinChunkSize(l.MinChunkSize)
		a.wm.setLimits(l)

		return nil
	}
}

// WithMinChunkSize sets the growth hint of the underlying byte store.
func WithMinChunkSize(n int) Options {
	return func(a *Async) error {
		if n <= 0 {
			return errorx.ErrInvalidConfig
		}

		a.buf.SetMinChunkSize(n)
		return nil
	}
}

// Async couples a byte store with a lifecycle status and a wait/notify
// protocol. One mutex guards both the data and the status together, the
// decision to wake or keep waiting depends on both. This is the only type in
// the package whose read path can suspend the caller.
type Async struct {
	// monitor: guards buf, status and failure together
	mu     sync.Mutex
	buf    Buffer
	status bf.Status
	// failure detail recorded by the producer with SetError
	failure error
	// Waiters manager
	wm *WaiterManager
	// Unread-byte snapshot taken when the monitor is acquired. Unlock compares
	// against it so appends made through Raw wake waiters like any other append.
	lockedAvail int
	// Hot-reloadable limits and its update notification channel
	limits  *config.DynamicLimits
	lNotify <-chan struct{}
	// Used to determine whether to enable indicator monitoring.
	enableMetrics bool
	// Batch indicator collector receiving operation data in real time.
	mc metrics.BatchCollector
}

// NewAsync returns a Ready buffer. Handles for the two roles come from
// Producer/Consumer, most callers never touch Async directly.
func NewAsync(opts ...Options) (*Async, error) {
	a := &Async{
		buf:    *NewBuffer(),
		status: bf.Ready,
		wm:     newWaiterManager(config.DefaultLimits()),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.enableMetrics && a.mc != nil {
		a.mc.Start()
	}

	return a, nil
}

// Lock acquires the monitor for a composite multi-step operation.
func (a *Async) Lock() {
	a.mu.Lock()
	a.lockedAvail = a.buf.AvailableBytes()
}

// Unlock releases the monitor. If the critical section grew the unread region,
// blocked consumers are notified, so data appended through Raw wakes them the
// same as Write would.
func (a *Async) Unlock() {
	grown := a.buf.AvailableBytes() - a.lockedAvail
	a.mu.Unlock()

	if grown > 0 {
		a.wm.notify(grown)
	}
}

// Raw exposes the underlying buffer for use between Lock and Unlock.
func (a *Async) Raw() *Buffer {
	return &a.buf
}

// Close stops the metrics worker, if any. The buffer itself needs no
// teardown.
func (a *Async) Close() {
	if a.enableMetrics && a.mc != nil {
		a.mc.Stop()
	}
	a.wm.Close()
}

func (a *Async) refreshLimitsLocked() {
	if a.lNotify == nil {
		return
	}

	select {
	case <-a.lNotify:
		l := a.limits.GetConfig()
		a.buf.SetMinChunkSize(l.MinChunkSize)
		a.wm.setLimits(l)
		log.Printf("limits updated: chunk=%d waiters=%d batch=%d",
			l.MinChunkSize, l.MaxWaiters, l.NotifyBatch)
	default:
	}
}

// append is the single write path for every producer-side operation.
func (a *Async) append(p []byte, owned bool) error {
	a.Lock()

	if a.status != bf.Ready {
		a.Unlock()
		if a.enableMetrics && a.mc != nil {
			a.mc.RecordAppend(0, errorx.ErrBufferClosed)
		}
		return errorx.ErrBufferClosed
	}

	a.refreshLimitsLocked()
	if owned {
		a.buf.AppendOwned(p)
	} else {
		a.buf.Append(p)
	}
	// Unlock notifies for the appended bytes
	a.Unlock()

	if a.enableMetrics && a.mc != nil {
		a.mc.RecordAppend(int64(len(p)), nil)
	}

	return nil
}

func (a *Async) appendBuffer(o *Buffer, owned bool) error {
	if o == nil {
		return nil
	}

	a.Lock()

	if a.status != bf.Ready {
		a.Unlock()
		if a.enableMetrics && a.mc != nil {
			a.mc.RecordAppend(0, errorx.ErrBufferClosed)
		}
		return errorx.ErrBufferClosed
	}

	a.refreshLimitsLocked()
	size := o.Len()
	if owned {
		a.buf.AppendBufferOwned(o)
	} else {
		a.buf.AppendBuffer(o)
	}
	a.Unlock()

	if a.enableMetrics && a.mc != nil {
		a.mc.RecordAppend(int64(size), nil)
	}

	return nil
}

// setStatus applies a monotonic transition. Regressions and self-transitions
// are rejected, terminal states stay terminal. Declaring ReadOnly on an
// already drained buffer fast-forwards straight to EoF.
func (a *Async) setStatus(s bf.Status, failure error) bool {
	if !s.Validate() {
		return false
	}

	a.Lock()

	if s <= a.status {
		a.Unlock()
		return false
	}

	if s == bf.ReadOnly && a.buf.AvailableBytes() == 0 {
		s = bf.EoF
	}
	a.status = s
	if s == bf.Error {
		a.failure = failure
	}

	// every waiter re-checks: remaining data plus the new status decides
	// whether it can still be satisfied
	a.wm.broadcast()
	a.Unlock()

	if a.enableMetrics && a.mc != nil {
		a.mc.RecordStatus(s)
	}

	return true
}

// Status returns the current lifecycle status.
func (a *Async) Status() bf.Status {
	a.Lock()
	defer a.Unlock()
	return a.status
}

// AvailableBytes returns the number of unread bytes.
func (a *Async) AvailableBytes() int {
	a.Lock()
	defer a.Unlock()
	return a.buf.AvailableBytes()
}

// Reserve pre-sizes the underlying store.
func (a *Async) Reserve(size int) {
	a.Lock()
	defer a.Unlock()
	a.buf.Reserve(size)
}

// maybeEoFLocked transitions to EoF once the last byte is drained after the
// producer declared ReadOnly, and wakes the remaining waiters so they observe
// termination instead of blocking.
func (a *Async) maybeEoFLocked() {
	if a.status == bf.ReadOnly && a.buf.AvailableBytes() == 0 {
		a.status = bf.EoF
		a.wm.broadcast()
		if a.enableMetrics && a.mc != nil {
			a.mc.RecordStatus(bf.EoF)
		}
	}
}

// errProducerLocked wraps the failure the producer reported.
func (a *Async) errProducerLocked() error {
	if a.failure != nil {
		return fmt.Errorf("%w: %w", errorx.ErrProducerFailed, a.failure)
	}
	return errorx.ErrProducerFailed
}

// blockingOp runs op under the monitor once need unread bytes are present,
// suspending the caller while the stream is still Ready. This loop is the
// only suspension point in the package.
//
// The contract, in check order:
//  1. producer failure beats everything, even buffered data
//  2. enough data present: run op immediately
//  3. status >= ReadOnly with insufficient data: the request can never be
//     satisfied, terminal failure instead of a hang
//  4. Ready with insufficient data: wait for a wakeup and re-check (guards
//     against spurious wakeups), or give up when ctx is done
//
// A Close while waiting releases the consumer with errorx.ErrBufferClosed,
// nobody is left to wake it.
func (a *Async) blockingOp(ctx context.Context, need int, op func(b *Buffer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var waitStart time.Time
	for {
		a.Lock()

		switch {
		case a.status == bf.Error:
			err := a.errProducerLocked()
			a.Unlock()
			a.recordWaitSince(waitStart)
			return err
		case a.buf.HasEnoughData(need):
			err := op(&a.buf)
			a.maybeEoFLocked()
			a.Unlock()
			a.recordWaitSince(waitStart)
			return err
		case a.status >= bf.ReadOnly:
			a.Unlock()
			a.recordWaitSince(waitStart)
			return errorx.ErrStreamEnded
		default:
		}

		// register while still holding the monitor, otherwise an append
		// between unlock and register would be missed
		id, ch, ok := a.wm.register()
		a.Unlock()
		if !ok {
			a.recordWaitSince(waitStart)
			return errorx.ErrBufferClosed
		}

		if waitStart.IsZero() {
			waitStart = time.Now()
			if a.enableMetrics && a.mc != nil {
				a.mc.RecordWaiter(bf.MetricsIncOp)
			}
		}

		select {
		case <-ch:
			a.wm.unregister(id)
		case <-ctx.Done():
			a.wm.unregister(id)
			a.recordWaitSince(waitStart)
			return ctx.Err()
		}
	}
}

func (a *Async) recordWaitSince(start time.Time) {
	if start.IsZero() {
		return
	}
	if a.enableMetrics && a.mc != nil {
		a.mc.RecordWaiter(bf.MetricsDecOp)
		a.mc.RecordWait(time.Since(start).Milliseconds())
	}
}

// extract blocks until length bytes can be drained, the stream terminates or
// ctx is done.
func (a *Async) extract(ctx context.Context, length int) ([]byte, error) {
	var out []byte
	err := a.blockingOp(ctx, length, func(b *Buffer) error {
		var opErr error
		out, opErr = b.Extract(length)
		return opErr
	})

	if a.enableMetrics && a.mc != nil {
		a.mc.RecordExtract(1, int64(len(out)), err)
	}

	return out, err
}

// extractInto blocks like extract but moves the bytes straight into dst.
func (a *Async) extractInto(ctx context.Context, length int, dst *Buffer) error {
	err := a.blockingOp(ctx, length, func(b *Buffer) error {
		return b.ExtractInto(length, dst)
	})

	if a.enableMetrics && a.mc != nil {
		size := int64(0)
		if err == nil {
			size = int64(length)
		}
		a.mc.RecordExtract(1, size, err)
	}

	return err
}

// read blocks like extract but returns a copy, advancing the shared read
// position without removing the bytes.
func (a *Async) read(ctx context.Context, length int) ([]byte, error) {
	var out []byte
	err := a.blockingOp(ctx, length, func(b *Buffer) error {
		var opErr error
		out, opErr = b.Read(length)
		return opErr
	})

	return out, err
}

// peek blocks until one byte is available and returns it without moving the
// read position.
func (a *Async) peek(ctx context.Context) (byte, error) {
	var out byte
	err := a.blockingOp(ctx, 1, func(b *Buffer) error {
		var opErr error
		out, opErr = b.Peek()
		return opErr
	})

	return out, err
}
