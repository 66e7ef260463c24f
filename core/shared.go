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

	bf "github.com/TimeWtr/ByteFlow"
)

// Shared wraps one Buffer behind a reader/writer lock. Every single-call
// operation takes the lock for its own duration, so no caller ever observes
// the buffer in a partially mutated state. Composite sequences that must be
// atomic as a unit either use Locked or pair Lock/Unlock with Raw.
type Shared struct {
	mu  sync.RWMutex
	buf Buffer
}

// NewShared returns an empty thread-safe buffer.
func NewShared() *Shared {
	return &Shared{buf: *NewBuffer()}
}

// NewSharedBuffer wraps a copy of the given buffer.
func NewSharedBuffer(b *Buffer) *Shared {
	s := NewShared()
	if b != nil {
		s.buf.AppendBuffer(b)
		s.buf.position = b.position
		s.buf.minChunkSize = b.minChunkSize
	}
	return s
}

// Lock acquires exclusive access for a composite multi-step operation.
// While held, operate on the buffer through Raw only; the regular methods
// would deadlock.
func (s *Shared) Lock() {
	s.mu.Lock()
}

// Unlock releases exclusive access. Callers must release on every exit path.
func (s *Shared) Unlock() {
	s.mu.Unlock()
}

// Raw exposes the underlying buffer for use between Lock and Unlock.
func (s *Shared) Raw() *Buffer {
	return &s.buf
}

// Locked runs fn with exclusive access, releasing the lock on every path.
func (s *Shared) Locked(fn func(b *Buffer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.buf)
}

func (s *Shared) Append(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Append(p)
}

func (s *Shared) AppendOwned(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.AppendOwned(p)
}

func (s *Shared) AppendString(str string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.AppendString(str)
}

func (s *Shared) AppendBuffer(o *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.AppendBuffer(o)
}

func (s *Shared) AppendBufferOwned(o *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.AppendBufferOwned(o)
}

// Read moves the shared cursor, so it takes the write lock even though the
// stored bytes stay untouched.
func (s *Shared) Read(length int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Read(length)
}

func (s *Shared) Extract(length int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Extract(length)
}

func (s *Shared) ExtractInto(length int, dst *Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.ExtractInto(length, dst)
}

func (s *Shared) Process(length int, fn Processor, out *Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Process(length, fn, out)
}

func (s *Shared) Peek() (byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Peek()
}

func (s *Shared) Discard(length int, mode bf.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Discard(length, mode)
}

func (s *Shared) Seek(offset int, mode bf.Position) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Seek(offset, mode)
}

func (s *Shared) AvailableBytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.AvailableBytes()
}

func (s *Shared) HasEnoughData(length int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.HasEnoughData(length)
}

func (s *Shared) Position() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Position()
}

func (s *Shared) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Len()
}

func (s *Shared) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Empty()
}

func (s *Shared) End() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.End()
}

func (s *Shared) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Clear()
}

func (s *Shared) Reserve(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reserve(size)
}

// Data returns an independent copy, safe to use without the lock.
func (s *Shared) Data() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Data()
}

func (s *Shared) HexDump(columnSize int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.HexDump(columnSize)
}
