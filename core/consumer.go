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

	bf "github.com/TimeWtr/ByteFlow"
)

// Extractor is the consumer-side role: drain bytes and inspect the lifecycle.
// It deliberately exposes no append operations.
type Extractor interface {
	Extract(ctx context.Context, length int) ([]byte, error)
	Read(ctx context.Context, length int) ([]byte, error)
	Status() bf.Status
	IsEoF() bool
}

var _ Extractor = Consumer{}

// Consumer is a lightweight destructive-read-only handle onto the same shared
// stream buffer as its Producer. Constructing one from the other never copies
// data.
type Consumer struct {
	a *Async
}

// Producer returns the append handle onto the same buffer.
func (c Consumer) Producer() Producer {
	return Producer{a: c.a}
}

// Extract drains length bytes. It blocks while the stream is Ready and short
// on data, until woken by an append or a status transition, ctx expires, or
// the stream terminates:
//   - errorx.ErrStreamEnded once ReadOnly/EoF is reached with less than
//     length bytes remaining
//   - errorx.ErrProducerFailed (wrapping the producer's error) after SetError
//   - ctx.Err() on cancellation or timeout
func (c Consumer) Extract(ctx context.Context, length int) ([]byte, error) {
	return c.a.extract(ctx, length)
}

// ExtractInto drains length bytes directly into dst under the same blocking
// contract as Extract.
func (c Consumer) ExtractInto(ctx context.Context, length int, dst *Buffer) error {
	return c.a.extractInto(ctx, length, dst)
}

// Read returns a copy of length bytes and advances the shared read position
// without removing the data. Blocking contract identical to Extract.
func (c Consumer) Read(ctx context.Context, length int) ([]byte, error) {
	return c.a.read(ctx, length)
}

// Peek returns the next unread byte without moving the read position,
// blocking until one is available or the stream terminates.
func (c Consumer) Peek(ctx context.Context) (byte, error) {
	return c.a.peek(ctx)
}

// AvailableBytes returns the number of bytes that can be drained right now.
func (c Consumer) AvailableBytes() int {
	return c.a.AvailableBytes()
}

// Status returns the current lifecycle status.
func (c Consumer) Status() bf.Status {
	return c.a.Status()
}

// IsEoF reports whether the stream terminated cleanly with nothing left to
// drain.
func (c Consumer) IsEoF() bool {
	return c.a.Status() == bf.EoF
}
