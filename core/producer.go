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
	bf "github.com/TimeWtr/ByteFlow"
)

// Appender is the producer-side role: append bytes and drive the lifecycle
// forward. It deliberately exposes no read operations.
type Appender interface {
	Write(p []byte) error
	WriteString(s string) error
	WriteBuffer(o *Buffer) error
	SetReadOnly() bool
	SetError(err error) bool
	Status() bf.Status
}

var _ Appender = Producer{}

// Producer is a lightweight write-append-only handle onto a shared stream
// buffer. Copies of a Producer reference the same buffer, the buffer lives as
// long as any Producer or Consumer handle does.
type Producer struct {
	a *Async
}

// NewProducer creates a fresh stream buffer and returns its producer handle.
func NewProducer(opts ...Options) (Producer, error) {
	a, err := NewAsync(opts...)
	if err != nil {
		return Producer{}, err
	}

	return Producer{a: a}, nil
}

// Consumer returns the destructive-read handle onto the same buffer. No data
// is copied.
func (p Producer) Consumer() Consumer {
	return Consumer{a: p.a}
}

// Write appends a copy of p. Fails with errorx.ErrBufferClosed once the
// stream left Ready.
func (p Producer) Write(data []byte) error {
	return p.a.append(data, false)
}

// WriteOwned appends p taking ownership, the caller must not touch p again.
func (p Producer) WriteOwned(data []byte) error {
	return p.a.append(data, true)
}

// WriteString appends the bytes of s.
func (p Producer) WriteString(s string) error {
	return p.a.append([]byte(s), true)
}

// WriteBuffer appends a copy of the contents of o.
func (p Producer) WriteBuffer(o *Buffer) error {
	return p.a.appendBuffer(o, false)
}

// WriteBufferOwned moves the contents of o into the stream and clears o.
func (p Producer) WriteBufferOwned(o *Buffer) error {
	return p.a.appendBuffer(o, true)
}

// SetReadOnly declares that no further appends will happen. Remaining bytes
// stay drainable; an already drained buffer goes straight to EoF. Returns
// false if the stream already left Ready.
func (p Producer) SetReadOnly() bool {
	return p.a.setStatus(bf.ReadOnly, nil)
}

// SetError marks the stream failed and wakes every blocked consumer. err is
// attached to the failures consumers see from then on.
func (p Producer) SetError(err error) bool {
	return p.a.setStatus(bf.Error, err)
}

// Status returns the current lifecycle status.
func (p Producer) Status() bf.Status {
	return p.a.Status()
}

// Reserve pre-sizes the underlying store for an expected burst.
func (p Producer) Reserve(size int) {
	p.a.Reserve(size)
}

// Lock acquires the buffer monitor for a composite multi-step operation,
// operate through Raw until Unlock.
func (p Producer) Lock() {
	p.a.Lock()
}

// Unlock releases the buffer monitor.
func (p Producer) Unlock() {
	p.a.Unlock()
}

// Raw exposes the underlying buffer for use between Lock and Unlock.
func (p Producer) Raw() *Buffer {
	return p.a.Raw()
}

// Close releases the supporting workers (metrics batcher, waiter manager).
// It does not touch the data or the status.
func (p Producer) Close() {
	p.a.Close()
}
