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
	"github.com/TimeWtr/ByteFlow/errorx"
	"github.com/TimeWtr/ByteFlow/metrics"
)

// Reader lazily produces the next chunk of external data. Returning an error
// means no more data will ever arrive; errorx.ErrReaderExhausted is the
// canonical value but any error is treated as terminal.
//
//go:generate mockgen -destination=./mocks/reader_mock.go -package mocks github.com/TimeWtr/ByteFlow/core Reader
type Reader interface {
	Supply() (*Buffer, error)
}

// ReaderFunc adapts a plain function to the Reader interface.
type ReaderFunc func() (*Buffer, error)

func (f ReaderFunc) Supply() (*Buffer, error) {
	return f()
}

type ExternalOption func(e *External)

// WithRefillRecorder reports every refill attempt to rec.
func WithRefillRecorder(rec metrics.Recorder) ExternalOption {
	return func(e *External) {
		e.rec = rec
	}
}

// External is a Shared buffer that pulls from a Reader right before any
// read-style operation that would otherwise come up short. The buffer owns
// the reader exclusively after construction. A reader failure is not a fatal
// library error, it is the designed end-of-data signal and surfaces as a
// plain overflow on the pending operation.
type External struct {
	*Shared
	reader    Reader
	exhausted bool
	rec       metrics.Recorder
}

func NewExternal(r Reader, opts ...ExternalOption) *External {
	e := &External{
		Shared: NewShared(),
		reader: r,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Exhausted reports whether the reader already signaled end of data.
func (e *External) Exhausted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.exhausted
}

// refill pulls chunks until need unread bytes are present or the reader runs
// dry. Caller holds the write lock.
func (e *External) refill(need int) error {
	for e.buf.AvailableBytes() < need {
		if e.exhausted || e.reader == nil {
			return errorx.ErrBufferOverflow
		}

		chunk, err := e.reader.Supply()
		if e.rec != nil {
			size := int64(0)
			if chunk != nil {
				size = int64(chunk.Len())
			}
			e.rec.RecordRefill(size, err)
		}
		if err != nil {
			e.exhausted = true
			return errorx.ErrBufferOverflow
		}

		// An empty chunk with no error would spin forever, treat it as
		// end of data as well.
		if chunk == nil || chunk.Empty() {
			e.exhausted = true
			return errorx.ErrBufferOverflow
		}

		e.buf.AppendBufferOwned(chunk)
	}

	return nil
}

func (e *External) Read(length int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.refill(length); err != nil {
		return nil, err
	}

	return e.buf.Read(length)
}

func (e *External) Extract(length int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.refill(length); err != nil {
		return nil, err
	}

	return e.buf.Extract(length)
}

func (e *External) ExtractInto(length int, dst *Buffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.refill(length); err != nil {
		return err
	}

	return e.buf.ExtractInto(length, dst)
}

func (e *External) Process(length int, fn Processor, out *Buffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.refill(length); err != nil {
		return err
	}

	return e.buf.Process(length, fn, out)
}

func (e *External) Peek() (byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.refill(1); err != nil {
		return 0, err
	}

	return e.buf.Peek()
}

// HasEnoughData refills first, so it answers for the combined buffered plus
// external data.
func (e *External) HasEnoughData(length int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.refill(length); err != nil {
		return false
	}

	return true
}
