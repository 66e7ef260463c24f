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
	"fmt"
	"strings"
	"unsafe"

	bf "github.com/TimeWtr/ByteFlow"
	"github.com/TimeWtr/ByteFlow/errorx"
	"github.com/TimeWtr/ByteFlow/poolx"
)

const defaultMinChunkSize = 512

// scratch serves the short-lived intermediate blocks used by Process.
var scratch = poolx.NewScratchPool()

// Processor transforms an extracted block before it is stored in the output
// buffer. The input slice is only valid for the duration of the call.
type Processor func(data []byte) ([]byte, error)

// Buffer is a single-threaded resizable byte sequence with a read cursor.
// All byte-level algorithms live here, the synchronization tiers (Shared,
// External, Async) wrap a Buffer instead of reimplementing them.
//
// Invariant: 0 <= position <= len(data).
type Buffer struct {
	data         []byte
	position     int
	minChunkSize int
}

// NewBuffer returns an empty buffer with the default growth chunk.
func NewBuffer() *Buffer {
	return &Buffer{minChunkSize: defaultMinChunkSize}
}

// NewBufferSize returns an empty buffer with capacity reserved for size bytes.
func NewBufferSize(size int) *Buffer {
	b := NewBuffer()
	b.Reserve(size)
	return b
}

// NewBufferBytes returns a buffer initialized with a copy of p.
func NewBufferBytes(p []byte) *Buffer {
	b := NewBuffer()
	b.Append(p)
	return b
}

// NewBufferOwned returns a buffer that takes ownership of p without copying.
// The caller must not touch p afterwards.
func NewBufferOwned(p []byte) *Buffer {
	return &Buffer{data: p, minChunkSize: defaultMinChunkSize}
}

// NewBufferString returns a buffer initialized with the bytes of s.
func NewBufferString(s string) *Buffer {
	b := NewBuffer()
	b.AppendString(s)
	return b
}

// SetMinChunkSize changes the growth hint. Values <= 0 restore the default.
func (b *Buffer) SetMinChunkSize(n int) {
	if n <= 0 {
		n = defaultMinChunkSize
	}
	b.minChunkSize = n
}

func (b *Buffer) grow(n int) {
	need := len(b.data) + n
	if need <= cap(b.data) {
		return
	}

	chunk := b.minChunkSize
	if chunk <= 0 {
		chunk = defaultMinChunkSize
	}

	newCap := cap(b.data)
	if newCap == 0 {
		newCap = chunk
	}
	for newCap < need {
		newCap += newCap/2 + chunk
	}

	nd := make([]byte, len(b.data), newCap)
	copy(nd, b.data)
	b.data = nd
}

// Append copies p to the end of the buffer. It never moves the read position
// and never fails.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.grow(len(p))
	b.data = append(b.data, p...)
}

// AppendOwned appends p taking ownership, avoiding a copy when the buffer is
// still empty. The caller must not touch p afterwards.
func (b *Buffer) AppendOwned(p []byte) {
	if len(p) == 0 {
		return
	}
	if len(b.data) == 0 && cap(b.data) < len(p) {
		b.data = p
		return
	}
	b.Append(p)
}

// AppendString copies the bytes of s to the end of the buffer.
func (b *Buffer) AppendString(s string) {
	if len(s) == 0 {
		return
	}
	b.grow(len(s))
	b.data = append(b.data, s...)
}

// AppendBuffer copies the full contents of o (read and unread alike) to the
// end of the buffer. The read position of o does not move.
func (b *Buffer) AppendBuffer(o *Buffer) {
	if o == nil {
		return
	}
	b.Append(o.data)
}

// AppendBufferOwned moves the contents of o into the buffer and clears o.
func (b *Buffer) AppendBufferOwned(o *Buffer) {
	if o == nil {
		return
	}
	b.AppendOwned(o.data)
	o.data = nil
	o.position = 0
}

// Numeric is the constraint for AppendNumeric.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr |
		~float32 | ~float64
}

// AppendNumeric appends the raw in-memory representation of v. The layout is
// the host's native endianness and width, a process-local format, not a wire
// format.
func AppendNumeric[T Numeric](b *Buffer, v T) {
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&v)), int(unsafe.Sizeof(v)))
	b.Append(raw)
}

// AvailableBytes returns the number of unread bytes.
func (b *Buffer) AvailableBytes() int {
	return len(b.data) - b.position
}

// HasEnoughData reports whether at least length unread bytes are present.
func (b *Buffer) HasEnoughData(length int) bool {
	return b.AvailableBytes() >= length
}

// Read returns a copy of length bytes starting at the read position and
// advances the position past them. The stored data itself is not modified,
// so a Seek back makes the same bytes readable again.
func (b *Buffer) Read(length int) ([]byte, error) {
	if length < 0 || b.position+length > len(b.data) {
		return nil, errorx.ErrBufferOverflow
	}

	out := make([]byte, length)
	copy(out, b.data[b.position:b.position+length])
	b.position += length

	return out, nil
}

// Extract returns ownership of length bytes and removes them, together with
// any bytes already read, from the buffer. The read position resets to 0.
func (b *Buffer) Extract(length int) ([]byte, error) {
	if length < 0 || b.position+length > len(b.data) {
		return nil, errorx.ErrBufferOverflow
	}

	out := make([]byte, length)
	copy(out, b.data[b.position:b.position+length])
	b.data = b.data[b.position+length:]
	b.position = 0

	return out, nil
}

// ExtractInto extracts length bytes directly into dst, skipping the
// intermediate result slice Extract would allocate.
func (b *Buffer) ExtractInto(length int, dst *Buffer) error {
	if dst == nil {
		return errorx.ErrBufferOverflow
	}
	if length < 0 || b.position+length > len(b.data) {
		return errorx.ErrBufferOverflow
	}

	dst.Append(b.data[b.position : b.position+length])
	b.data = b.data[b.position+length:]
	b.position = 0

	return nil
}

// Process extracts length bytes, runs fn over them and appends the result to
// out in one step. The extracted block lives in pooled scratch space. On a
// processing error the buffer is left untouched.
func (b *Buffer) Process(length int, fn Processor, out *Buffer) error {
	if fn == nil || out == nil {
		return errorx.ErrBufferOverflow
	}
	if length < 0 || b.position+length > len(b.data) {
		return errorx.ErrBufferOverflow
	}

	buf := scratch.Alloc(length)
	buf = append(buf, b.data[b.position:b.position+length]...)

	res, err := fn(buf)
	if err != nil {
		scratch.Free(buf)
		return err
	}

	out.Append(res)
	scratch.Free(buf)

	b.data = b.data[b.position+length:]
	b.position = 0

	return nil
}

// Peek returns the next unread byte without moving the read position.
func (b *Buffer) Peek() (byte, error) {
	if b.position >= len(b.data) {
		return 0, errorx.ErrBufferOverflow
	}

	return b.data[b.position], nil
}

// Discard removes bytes from the buffer, clamped to what is actually there.
// Relative removes from the read position, Absolute from the start. The read
// position is adjusted so it keeps pointing at the same unread byte. Unknown
// modes are ignored.
func (b *Buffer) Discard(length int, mode bf.Position) {
	if length <= 0 {
		return
	}

	switch mode {
	case bf.Relative:
		k := length
		if k > len(b.data)-b.position {
			k = len(b.data) - b.position
		}
		b.data = append(b.data[:b.position], b.data[b.position+k:]...)
	case bf.Absolute, bf.Begin:
		k := length
		if k > len(b.data) {
			k = len(b.data)
		}
		b.data = b.data[k:]
		b.position -= k
		if b.position < 0 {
			b.position = 0
		}
	default:
	}
}

// Seek repositions the read cursor and returns the new position. Out-of-range
// targets clamp to [0, Len()], the position is advisory metadata so Seek never
// fails. Unknown modes leave the position unchanged.
func (b *Buffer) Seek(offset int, mode bf.Position) int {
	var target int
	switch mode {
	case bf.Begin, bf.Absolute:
		target = offset
	case bf.End:
		target = len(b.data) + offset
	case bf.Relative:
		target = b.position + offset
	default:
		return b.position
	}

	if target < 0 {
		target = 0
	}
	if target > len(b.data) {
		target = len(b.data)
	}
	b.position = target

	return b.position
}

// Position returns the current read position.
func (b *Buffer) Position() int {
	return b.position
}

// Len returns the total number of stored bytes, read and unread alike.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the current capacity.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Empty reports whether the buffer stores no bytes at all.
func (b *Buffer) Empty() bool {
	return len(b.data) == 0
}

// End reports whether the read position is at the end of the stored data.
func (b *Buffer) End() bool {
	return b.position >= len(b.data)
}

// Clear drops all data and resets the read position.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.position = 0
}

// Reserve makes sure the buffer can hold at least size bytes without another
// allocation.
func (b *Buffer) Reserve(size int) {
	if size <= cap(b.data) {
		return
	}
	b.grow(size - len(b.data))
}

// Data returns an independent copy of the stored bytes.
func (b *Buffer) Data() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Span returns a zero-copy view of the stored bytes. Any mutation of the
// buffer invalidates the returned slice.
func (b *Buffer) Span() []byte {
	return b.data
}

// HexDump renders the stored bytes as rows of columnSize space-separated
// lowercase hex pairs. Diagnostic only, no state change.
func (b *Buffer) HexDump(columnSize int) string {
	if columnSize <= 0 {
		columnSize = 16
	}

	var sb strings.Builder
	for i, v := range b.data {
		if i > 0 {
			if i%columnSize == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, "%02x", v)
	}

	return sb.String()
}
